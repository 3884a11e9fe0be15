package p2p

import (
	"context"
	"fmt"
	"log/slog"
	"peer-chat/errors"
	"sync"
)

// Hub is an in-memory broadcast medium shared by Loopback plugins.
// Every published message is delivered to all other members, and to the
// sender as well when echo is enabled.
type Hub struct {
	mu      sync.RWMutex
	log     *slog.Logger
	echo    bool
	members []*Loopback
	closed  bool
}

func NewHub(log *slog.Logger, echo bool) *Hub {
	return &Hub{log: log, echo: echo}
}

// Join attaches a new plugin identified by peerID.
func (h *Hub) Join(peerID string) *Loopback {
	h.mu.Lock()
	defer h.mu.Unlock()

	member := &Loopback{hub: h, peerID: peerID, emitter: NewEmitter(), closed: h.closed}
	h.members = append(h.members, member)
	return member
}

// Publish delivers text to the members. A nil from is delivered as an
// anonymous event and reaches every member.
func (h *Hub) Publish(from *string, text string) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return errors.ErrPluginClosed
	}
	members := make([]*Loopback, len(h.members))
	copy(members, h.members)
	h.mu.RUnlock()

	payload, err := EncodeMessageEvent(text, from)
	if err != nil {
		return err
	}
	for _, m := range members {
		if from != nil && *from == m.peerID && !h.echo {
			continue
		}
		m.emitter.Emit(MessageChannel, payload)
	}
	return nil
}

// Close detaches every member, later calls fail with ErrPluginClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, m := range h.members {
		m.markClosed()
	}
	h.members = nil
	h.log.Debug("Loopback hub closed")
}

func (h *Hub) leave(member *Loopback) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, m := range h.members {
		if m == member {
			h.members = append(h.members[:i:i], h.members[i+1:]...)
			return
		}
	}
}

// Loopback is a Plugin backed by a Hub instead of a network.
type Loopback struct {
	hub     *Hub
	peerID  string
	emitter *Emitter
	mu      sync.Mutex
	closed  bool
}

func (l *Loopback) Invoke(ctx context.Context, command string, payload []byte) error {
	if l.isClosed() {
		return errors.ErrPluginClosed
	}
	if command != BroadcastCommand {
		return fmt.Errorf("%w: %s", errors.ErrUnknownCommand, command)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req, err := DecodeBroadcast(payload)
	if err != nil {
		return err
	}
	from := l.peerID
	return l.hub.Publish(&from, req.Message)
}

func (l *Loopback) Listen(channel string, listener func(payload []byte)) (func(), error) {
	if l.isClosed() {
		return nil, errors.ErrPluginClosed
	}
	return l.emitter.Listen(channel, listener), nil
}

func (l *Loopback) LocalPeerID() string { return l.peerID }

// Peers returns the ids of the other hub members.
func (l *Loopback) Peers() []string {
	l.hub.mu.RLock()
	defer l.hub.mu.RUnlock()

	var ids []string
	for _, m := range l.hub.members {
		if m != l {
			ids = append(ids, m.peerID)
		}
	}
	return ids
}

// Close leaves the hub, other members keep talking.
func (l *Loopback) Close() {
	l.markClosed()
	l.hub.leave(l)
}

func (l *Loopback) markClosed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func (l *Loopback) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
