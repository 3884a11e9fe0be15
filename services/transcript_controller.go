package services

import (
	"context"
	"fmt"
	"log/slog"
	"peer-chat/contract"
	"peer-chat/domain"
	"peer-chat/domain/event"
	"peer-chat/errors"
	"strings"
	"sync"
	"time"
)

type ITranscriptController interface {
	Submit(ctx context.Context, text string) error
	OnRemoteMessage(peerID string, text string)
	View() []domain.Message
	UpdateDraft(text string)
	Draft() string
}

// TranscriptController owns the transcript and the draft of one session.
// Local submissions and remote deliveries are serialised by mu, so the
// transcript order is exactly the order in which appends were processed.
type TranscriptController struct {
	log    *slog.Logger
	bridge contract.Bridge
	policy Policy
	now    func() time.Time

	mu           sync.Mutex
	transcript   *domain.Transcript
	draft        domain.Draft
	events       chan event.MessageAppended
	closed       bool
	subscription contract.Subscription
}

func NewTranscriptController(log *slog.Logger, bridge contract.Bridge, policy Policy, bufferSize int) *TranscriptController {
	return &TranscriptController{
		log:        log,
		bridge:     bridge,
		policy:     policy,
		now:        time.Now,
		transcript: domain.NewTranscript(),
		events:     make(chan event.MessageAppended, bufferSize),
	}
}

// Start subscribes to the bridge. Remote messages are appended from then on.
func (c *TranscriptController) Start() error {
	sub, err := c.bridge.Subscribe(c.OnRemoteMessage)
	if err != nil {
		return fmt.Errorf("transcript subscription failed: %w", err)
	}
	c.mu.Lock()
	c.subscription = sub
	c.mu.Unlock()
	return nil
}

// Close cancels the subscription and closes the event stream. Idempotent.
func (c *TranscriptController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.subscription != nil {
		c.subscription.Cancel()
	}
	close(c.events)
}

// Submit appends text as a local message, clears the draft, then broadcasts.
// Empty or blank text is rejected with ErrEmptyInput and changes nothing.
func (c *TranscriptController) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyInput
	}

	c.mu.Lock()
	c.append(domain.NewMessage(text, domain.Local(), c.now()))
	c.draft.Reset()
	c.mu.Unlock()

	// Outside the lock: a transport echoing synchronously re-enters OnRemoteMessage
	c.bridge.Broadcast(ctx, text)
	return nil
}

// OnRemoteMessage appends a message delivered by the transport.
// Only the configured policy may drop it, there is no other filtering.
func (c *TranscriptController) OnRemoteMessage(peerID string, text string) {
	if peerID == "" && c.policy.Anonymous == AnonymousReject {
		c.log.Debug("Remote message rejected", "error", errors.ErrAnonymousSender)
		return
	}
	if c.policy.Dedup == DedupOwnEcho && peerID != "" && peerID == c.bridge.LocalPeerID() {
		c.log.Debug("Echo of own message dropped", "peer_id", peerID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(domain.NewMessage(text, domain.Remote(peerID), c.now()))
}

// View returns a snapshot of the transcript in append order.
func (c *TranscriptController) View() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

func (c *TranscriptController) UpdateDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Set(text)
}

func (c *TranscriptController) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Text()
}

// Events streams one MessageAppended per append, in transcript order.
// The stream is best-effort: when the buffer is full the event is lost and
// consumers catch up through View.
func (c *TranscriptController) Events() <-chan event.MessageAppended {
	return c.events
}

// append must be called with mu held.
func (c *TranscriptController) append(message domain.Message) {
	index := c.transcript.Append(message)
	if c.closed {
		return
	}
	select {
	case c.events <- event.MessageAppended{Index: index, Message: message}:
	default:
		c.log.Debug("Transcript event lost", "index", index)
	}
}
