// Package p2p holds the peer-to-peer transport plugins.
// A plugin accepts named commands and emits JSON events on named channels,
// the same calling convention whatever the network underneath.
package p2p

import (
	"encoding/json"
	"fmt"
	"peer-chat/errors"
)

const (
	BroadcastCommand = "plugin:libp2p|broadcast"
	MessageChannel   = "plugin:libp2p|message"
	MessageEventType = "message"
)

// BroadcastRequest is the payload of BroadcastCommand.
type BroadcastRequest struct {
	Message string `json:"message"`
}

// MessageEvent is emitted on MessageChannel for every inbound message.
// From is nil when the sender is unknown.
type MessageEvent struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	From    *string `json:"from"`
}

func EncodeBroadcast(text string) ([]byte, error) {
	return json.Marshal(BroadcastRequest{Message: text})
}

func DecodeBroadcast(payload []byte) (BroadcastRequest, error) {
	var req BroadcastRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return BroadcastRequest{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return req, nil
}

func EncodeMessageEvent(text string, from *string) ([]byte, error) {
	return json.Marshal(MessageEvent{Type: MessageEventType, Message: text, From: from})
}

func DecodeMessageEvent(payload []byte) (MessageEvent, error) {
	var evt MessageEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return MessageEvent{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if evt.Type != MessageEventType {
		return MessageEvent{}, fmt.Errorf("%w: unexpected event type %q", errors.ErrInvalidPayload, evt.Type)
	}
	return evt, nil
}
