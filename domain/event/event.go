package event

import (
	"peer-chat/domain"
)

// MessageAppended is emitted once per transcript append.
// Index is the position of Message in the transcript, consumers use it to
// detect lost notifications.
type MessageAppended struct {
	Index   int
	Message domain.Message
}
