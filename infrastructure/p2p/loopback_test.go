package p2p

import (
	"context"
	"log/slog"
	"peer-chat/errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, plugin *Loopback) *[]MessageEvent {
	t.Helper()
	var events []MessageEvent
	_, err := plugin.Listen(MessageChannel, func(payload []byte) {
		evt, err := DecodeMessageEvent(payload)
		require.NoError(t, err)
		events = append(events, evt)
	})
	require.NoError(t, err)
	return &events
}

func broadcast(t *testing.T, plugin *Loopback, text string) error {
	t.Helper()
	payload, err := EncodeBroadcast(text)
	require.NoError(t, err)
	return plugin.Invoke(context.Background(), BroadcastCommand, payload)
}

func TestLoopback_Broadcast_ReachesOtherMembers(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), false)
	alice, bob, clara := hub.Join("alice"), hub.Join("bob"), hub.Join("clara")
	aliceEvents, bobEvents, claraEvents := collect(t, alice), collect(t, bob), collect(t, clara)

	// When alice broadcasts
	req.NoError(broadcast(t, alice, "hello"))

	// Then every other member receives it with alice as sender
	req.Empty(*aliceEvents)
	req.Len(*bobEvents, 1)
	req.Len(*claraEvents, 1)
	req.Equal("hello", (*bobEvents)[0].Message)
	req.Equal("alice", *(*bobEvents)[0].From)
	req.ElementsMatch([]string{"bob", "clara"}, alice.Peers())
}

func TestLoopback_Echo(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), true)
	alice := hub.Join("alice")
	aliceEvents := collect(t, alice)

	// When echo is enabled, the sender gets its own message back
	req.NoError(broadcast(t, alice, "hello"))

	req.Len(*aliceEvents, 1)
	req.Equal("alice", *(*aliceEvents)[0].From)
}

func TestHub_Publish_Anonymous(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), false)
	alice := hub.Join("alice")
	events := collect(t, alice)

	req.NoError(hub.Publish(nil, "who am I"))

	req.Len(*events, 1)
	req.Nil((*events)[0].From)
}

func TestLoopback_Errors(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), false)
	alice, bob := hub.Join("alice"), hub.Join("bob")

	// Unknown command
	err := alice.Invoke(context.Background(), "plugin:libp2p|dial", nil)
	req.ErrorIs(err, errors.ErrUnknownCommand)

	// Malformed payload
	err = alice.Invoke(context.Background(), BroadcastCommand, []byte("{"))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	// A member leaving doesn't affect the others
	bob.Close()
	req.ErrorIs(broadcast(t, bob, "hi"), errors.ErrPluginClosed)
	req.NoError(broadcast(t, alice, "hi"))
	req.Empty(alice.Peers())

	// Closing the hub closes everyone
	hub.Close()
	req.ErrorIs(broadcast(t, alice, "hi"), errors.ErrPluginClosed)
	_, err = alice.Listen(MessageChannel, func([]byte) {})
	req.ErrorIs(err, errors.ErrPluginClosed)
	req.ErrorIs(hub.Publish(lo.ToPtr("x"), "hi"), errors.ErrPluginClosed)
}
