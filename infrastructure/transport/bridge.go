// Package transport adapts the peer-to-peer plugin's calling convention to
// the typed Bridge used by the transcript controller.
package transport

import (
	"context"
	"log/slog"
	"peer-chat/contract"
	"peer-chat/errors"
	"peer-chat/infrastructure/p2p"
	"sync"
)

// Bridge wraps a contract.Plugin.
// It keeps no state beyond the active subscription.
type Bridge struct {
	log    *slog.Logger
	plugin contract.Plugin
	mu     sync.Mutex
	active *subscription
}

func NewBridge(log *slog.Logger, plugin contract.Plugin) *Bridge {
	return &Bridge{log: log, plugin: plugin}
}

// Broadcast asks the plugin to deliver text to every connected peer.
// Failures are logged and dropped, the caller is never told.
func (b *Bridge) Broadcast(ctx context.Context, text string) {
	payload, err := p2p.EncodeBroadcast(text)
	if err != nil {
		b.log.Warn("Broadcast payload encoding failed", "error", err)
		return
	}
	if err := b.plugin.Invoke(ctx, p2p.BroadcastCommand, payload); err != nil {
		b.log.Warn("Broadcast not delivered to transport", "error", err)
	}
}

// Subscribe registers handler for every inbound message event.
// Only one subscription may be active, a second call fails with
// ErrAlreadySubscribed until the first one is cancelled.
func (b *Bridge) Subscribe(handler contract.RemoteHandler) (contract.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		return nil, errors.ErrAlreadySubscribed
	}

	unlisten, err := b.plugin.Listen(p2p.MessageChannel, func(payload []byte) {
		evt, err := p2p.DecodeMessageEvent(payload)
		if err != nil {
			b.log.Warn("Inbound event dropped", "error", err)
			return
		}
		var peerID string
		if evt.From != nil {
			peerID = *evt.From
		}
		handler(peerID, evt.Message)
	})
	if err != nil {
		return nil, err
	}

	b.active = &subscription{bridge: b, unlisten: unlisten}
	return b.active, nil
}

func (b *Bridge) LocalPeerID() string { return b.plugin.LocalPeerID() }

func (b *Bridge) release(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == s {
		b.active = nil
	}
}

type subscription struct {
	bridge   *Bridge
	unlisten func()
	once     sync.Once
}

// Cancel stops the handler from receiving events. Idempotent.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		if s.unlisten != nil {
			s.unlisten()
		}
		s.bridge.release(s)
	})
}
