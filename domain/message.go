// Package domain contains core concepts of the chat client.
// This file defines Message entries and their Origin.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type OriginKind int

const (
	LocalOrigin OriginKind = iota
	RemoteOrigin
)

func (k OriginKind) String() string {
	switch k {
	case LocalOrigin:
		return "local"
	case RemoteOrigin:
		return "remote"
	default:
		return "unknown"
	}
}

// Origin tells who authored a message.
// PeerID is only meaningful for RemoteOrigin, an empty PeerID means the
// transport did not provide a sender.
type Origin struct {
	Kind   OriginKind
	PeerID string
}

func Local() Origin {
	return Origin{Kind: LocalOrigin}
}

func Remote(peerID string) Origin {
	return Origin{Kind: RemoteOrigin, PeerID: peerID}
}

func (o Origin) IsLocal() bool { return o.Kind == LocalOrigin }

func (o Origin) IsAnonymous() bool { return o.Kind == RemoteOrigin && o.PeerID == "" }

// Message represents an immutable transcript entry.
// Fields are unexported so the origin can't be reassigned after creation.
type Message struct {
	id         uuid.UUID
	text       string
	origin     Origin
	receivedAt time.Time
}

func NewMessage(text string, origin Origin, at time.Time) Message {
	return Message{
		id:         uuid.New(),
		text:       text,
		origin:     origin,
		receivedAt: at,
	}
}

func (m Message) ID() uuid.UUID         { return m.id }
func (m Message) Text() string          { return m.text }
func (m Message) Origin() Origin        { return m.origin }
func (m Message) ReceivedAt() time.Time { return m.receivedAt }
