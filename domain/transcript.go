package domain

// Transcript is the ordered, append-only list of messages of a session.
// It doesn't protect itself: the owner serialises access.
type Transcript struct {
	messages []Message
}

func NewTranscript() *Transcript {
	return &Transcript{
		messages: nil,
	}
}

// Append adds the message at the end and returns its index.
func (t *Transcript) Append(message Message) int {
	t.messages = append(t.messages, message)
	return len(t.messages) - 1
}

// Messages returns a copy, callers can't mutate the transcript through it.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}
