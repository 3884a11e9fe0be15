package transport

import (
	"context"
	"fmt"
	"log/slog"
	"peer-chat/errors"
	"peer-chat/infrastructure/p2p"
	"peer-chat/mocks"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type inbound struct {
	peerID string
	text   string
}

func TestBridge_Broadcast_InvokesPlugin(t *testing.T) {
	ctrl := gomock.NewController(t)
	plugin := mocks.NewMockPlugin(ctrl)
	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), plugin)

	// Then the plugin receives the broadcast command with a JSON payload
	plugin.EXPECT().
		Invoke(gomock.Any(), p2p.BroadcastCommand, []byte(`{"message":"hello"}`)).
		Return(nil).
		Times(1)

	// When broadcasting
	bridge.Broadcast(context.Background(), "hello")
}

func TestBridge_Broadcast_SwallowsTransportFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	plugin := mocks.NewMockPlugin(ctrl)
	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), plugin)

	// Given the transport fails
	plugin.EXPECT().
		Invoke(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("no route to peers")).
		Times(1)

	// Then nothing surfaces to the caller
	require.NotPanics(t, func() { bridge.Broadcast(context.Background(), "hello") })
}

func TestBridge_Subscribe_DecodesEvents(t *testing.T) {
	req := require.New(t)
	hub := p2p.NewHub(slog.Default(), false)
	bridge := NewBridge(slog.Default(), hub.Join("me"))

	var received []inbound
	sub, err := bridge.Subscribe(func(peerID, text string) {
		received = append(received, inbound{peerID, text})
	})
	req.NoError(err)
	defer sub.Cancel()

	// When a peer, then an anonymous sender, publish
	req.NoError(hub.Publish(lo.ToPtr("abc123"), "hi there"))
	req.NoError(hub.Publish(nil, "who is it"))

	// Then the handler sees both, the anonymous one with an empty peer id
	req.Equal([]inbound{{"abc123", "hi there"}, {"", "who is it"}}, received)
}

func TestBridge_Subscribe_DropsMalformedEvents(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	plugin := mocks.NewMockPlugin(ctrl)
	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), plugin)

	var listener func([]byte)
	plugin.EXPECT().
		Listen(p2p.MessageChannel, gomock.Any()).
		DoAndReturn(func(_ string, fn func([]byte)) (func(), error) {
			listener = fn
			return func() {}, nil
		})

	calls := 0
	_, err := bridge.Subscribe(func(string, string) { calls++ })
	req.NoError(err)

	// When the plugin emits garbage, then a valid event
	listener([]byte(`{"type":"message"`))
	listener([]byte(`{"type":"message","message":"ok","from":"p"}`))

	// Then only the valid event reaches the handler
	req.Equal(1, calls)
}

func TestBridge_Subscribe_OnlyOneActive(t *testing.T) {
	req := require.New(t)
	hub := p2p.NewHub(slog.Default(), false)
	bridge := NewBridge(slog.Default(), hub.Join("me"))

	first, err := bridge.Subscribe(func(string, string) {})
	req.NoError(err)

	// When subscribing a second time
	_, err = bridge.Subscribe(func(string, string) {})

	// Then it is refused
	req.ErrorIs(err, errors.ErrAlreadySubscribed)

	// And accepted again once the first is cancelled
	first.Cancel()
	first.Cancel()
	second, err := bridge.Subscribe(func(string, string) {})
	req.NoError(err)
	second.Cancel()
}

func TestBridge_Cancel_StopsDelivery(t *testing.T) {
	req := require.New(t)
	hub := p2p.NewHub(slog.Default(), false)
	bridge := NewBridge(slog.Default(), hub.Join("me"))

	calls := 0
	sub, err := bridge.Subscribe(func(string, string) { calls++ })
	req.NoError(err)

	req.NoError(hub.Publish(lo.ToPtr("peer"), "one"))
	sub.Cancel()
	req.NoError(hub.Publish(lo.ToPtr("peer"), "two"))

	req.Equal(1, calls)
}

func TestBridge_Subscribe_PluginClosed(t *testing.T) {
	hub := p2p.NewHub(slog.Default(), false)
	plugin := hub.Join("me")
	hub.Close()
	bridge := NewBridge(slog.Default(), plugin)

	_, err := bridge.Subscribe(func(string, string) {})

	require.ErrorIs(t, err, errors.ErrPluginClosed)
}
