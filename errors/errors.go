package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrEmptyInput        = fmt.Errorf("message is empty")
	ErrAnonymousSender   = fmt.Errorf("remote message has no sender")
	ErrAlreadySubscribed = fmt.Errorf("a subscription is already active")
	ErrPluginClosed      = fmt.Errorf("transport plugin is closed")
	ErrUnknownCommand    = fmt.Errorf("unknown plugin command")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)
