package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitter_Emit_RegistrationOrder(t *testing.T) {
	req := require.New(t)
	emitter := NewEmitter()
	var received []string

	emitter.Listen(MessageChannel, func(p []byte) { received = append(received, "first:"+string(p)) })
	emitter.Listen(MessageChannel, func(p []byte) { received = append(received, "second:"+string(p)) })
	emitter.Listen("other", func(p []byte) { received = append(received, "other:"+string(p)) })

	// When emitting on one channel
	reached := emitter.Emit(MessageChannel, []byte("x"))

	// Then only its listeners are called, in order
	req.Equal(2, reached)
	req.Equal([]string{"first:x", "second:x"}, received)
}

func TestEmitter_Unlisten(t *testing.T) {
	req := require.New(t)
	emitter := NewEmitter()
	calls := 0

	unlisten := emitter.Listen(MessageChannel, func([]byte) { calls++ })
	emitter.Emit(MessageChannel, nil)

	// When the listener is removed twice
	unlisten()
	unlisten()

	// Then it no longer receives events and the channel is gone
	req.Equal(0, emitter.Emit(MessageChannel, nil))
	req.Equal(1, calls)
	req.Empty(emitter.listeners)
}
