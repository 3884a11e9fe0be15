// Package projection builds display timelines from transcript events.
// Handles labelling, masking and catching up on lost events.
// Does not mutate the transcript or talk to the transport.
package projection

import (
	"context"
	"peer-chat/contract"
	"peer-chat/domain"
	"peer-chat/domain/event"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	LocalAuthor     = "me"
	AnonymousAuthor = "anonymous"
	shortIDLength   = 8
)

// Censor masks words in display text.
type Censor interface {
	Censor(original string) string
}

// Line is one displayable transcript entry.
type Line struct {
	Index  int
	Author string
	Text   string
	Local  bool
	At     time.Time
}

// Timeline holds the display lines of a transcript.
type Timeline struct {
	mu     sync.RWMutex
	viewer contract.TranscriptViewer
	censor Censor
	lines  []Line
}

// NewTimeline builds an empty timeline. viewer is used to resynchronise
// after lost events, censor may be nil.
func NewTimeline(viewer contract.TranscriptViewer, censor Censor) *Timeline {
	return &Timeline{
		viewer: viewer,
		censor: censor,
		lines:  nil,
	}
}

func (t *Timeline) Consume(_ context.Context, e event.MessageAppended) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case e.Index < len(t.lines):
		// Already projected by a previous resync
		return nil
	case e.Index > len(t.lines) && t.viewer != nil:
		t.resync(t.viewer.View())
		return nil
	default:
		t.lines = append(t.lines, t.fromMessage(len(t.lines), e.Message))
		return nil
	}
}

// Lines returns a snapshot of every line.
func (t *Timeline) Lines() []Line {
	return t.Since(0)
}

// Since returns the lines from index from onwards.
func (t *Timeline) Since(from int) []Line {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if from >= len(t.lines) {
		return nil
	}
	out := make([]Line, len(t.lines)-from)
	copy(out, t.lines[from:])
	return out
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lines)
}

func (t *Timeline) resync(messages []domain.Message) {
	t.lines = lo.Map(messages, func(m domain.Message, i int) Line {
		return t.fromMessage(i, m)
	})
}

func (t *Timeline) fromMessage(index int, message domain.Message) Line {
	text := message.Text()
	if t.censor != nil {
		text = t.censor.Censor(text)
	}
	return Line{
		Index:  index,
		Author: AuthorLabel(message.Origin()),
		Text:   text,
		Local:  message.Origin().IsLocal(),
		At:     message.ReceivedAt(),
	}
}

// AuthorLabel names the author the way the transcript shows it:
// the last characters of a remote peer id are enough to tell peers apart.
func AuthorLabel(origin domain.Origin) string {
	switch {
	case origin.IsLocal():
		return LocalAuthor
	case origin.IsAnonymous():
		return AnonymousAuthor
	default:
		return ShortPeerID(origin.PeerID)
	}
}

func ShortPeerID(peerID string) string {
	runes := []rune(peerID)
	if len(runes) <= shortIDLength {
		return peerID
	}
	return string(runes[len(runes)-shortIDLength:])
}
