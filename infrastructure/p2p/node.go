package p2p

import (
	"context"
	"fmt"
	"log/slog"
	"peer-chat/errors"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/samber/lo"
)

const commandBufferSize = 100

type NodeConfig struct {
	ListenAddress   string
	Topic           string
	EnableMDNS      bool
	MDNSServiceTag  string
	EchoOwnMessages bool
}

// Node is a Plugin running a libp2p host with a floodsub topic.
// Broadcast commands are queued and published by Run, inbound topic messages
// are emitted on MessageChannel.
type Node struct {
	log      *slog.Logger
	config   NodeConfig
	host     host.Host
	topic    *pubsub.Topic
	sub      *pubsub.Subscription
	mdns     mdns.Service
	emitter  *Emitter
	commands chan string
	done     chan struct{}
	once     sync.Once
}

// NewNode creates the host with a fresh Ed25519 identity, joins the topic and
// starts mDNS discovery when enabled. Run must be called to move messages.
func NewNode(ctx context.Context, log *slog.Logger, config NodeConfig) (*Node, error) {
	priv, _, err := crypto.GenerateKeyPair(crypto.Ed25519, -1)
	if err != nil {
		return nil, fmt.Errorf("identity generation failed: %w", err)
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(config.ListenAddress),
	)
	if err != nil {
		return nil, fmt.Errorf("libp2p host creation failed: %w", err)
	}

	ps, err := pubsub.NewFloodSub(ctx, h)
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("floodsub creation failed: %w", err)
	}
	topic, err := ps.Join(config.Topic)
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("joining topic %s failed: %w", config.Topic, err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("subscribing topic %s failed: %w", config.Topic, err)
	}

	n := &Node{
		log:      log,
		config:   config,
		host:     h,
		topic:    topic,
		sub:      sub,
		emitter:  NewEmitter(),
		commands: make(chan string, commandBufferSize),
		done:     make(chan struct{}),
	}

	if config.EnableMDNS {
		n.mdns = mdns.NewMdnsService(h, config.MDNSServiceTag, &discoveryNotifee{node: n})
		if err := n.mdns.Start(); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("mDNS discovery failed to start: %w", err)
		}
	}

	log.Info("Local peer started", "peer_id", h.ID().String(), "addrs", h.Addrs())
	return n, nil
}

func (n *Node) Invoke(ctx context.Context, command string, payload []byte) error {
	if command != BroadcastCommand {
		return fmt.Errorf("%w: %s", errors.ErrUnknownCommand, command)
	}
	req, err := DecodeBroadcast(payload)
	if err != nil {
		return err
	}
	select {
	case <-n.done:
		return errors.ErrPluginClosed
	default:
	}
	select {
	case n.commands <- req.Message:
		return nil
	case <-n.done:
		return errors.ErrPluginClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Node) Listen(channel string, listener func(payload []byte)) (func(), error) {
	select {
	case <-n.done:
		return nil, errors.ErrPluginClosed
	default:
	}
	return n.emitter.Listen(channel, listener), nil
}

func (n *Node) LocalPeerID() string { return n.host.ID().String() }

// Peers returns the ids of the currently connected peers.
func (n *Node) Peers() []string {
	return lo.Map(n.host.Network().Peers(), func(p peer.ID, _ int) string {
		return p.String()
	})
}

// AddrInfo describes how other nodes can reach this one.
func (n *Node) AddrInfo() peer.AddrInfo {
	return peer.AddrInfo{ID: n.host.ID(), Addrs: n.host.Addrs()}
}

// Connect dials another node directly, without discovery.
func (n *Node) Connect(ctx context.Context, info peer.AddrInfo) error {
	return n.host.Connect(ctx, info)
}

// Run publishes queued broadcasts and emits inbound messages until ctx is
// done or the node is closed.
func (n *Node) Run(ctx context.Context) error {
	inbound := make(chan *pubsub.Message)
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go n.read(readCtx, inbound)

	for {
		select {
		case <-ctx.Done():
			n.log.Debug("Context done, stopping node loop")
			return nil
		case <-n.done:
			return nil
		case text := <-n.commands:
			if err := n.topic.Publish(ctx, []byte(text)); err != nil {
				// Fire-and-forget, the sender never learns about it
				n.log.Warn("Publish failed", "error", err)
			}
		case msg := <-inbound:
			n.emit(msg)
		}
	}
}

func (n *Node) read(ctx context.Context, inbound chan<- *pubsub.Message) {
	for {
		msg, err := n.sub.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				n.log.Warn("Topic subscription ended", "error", err)
			}
			return
		}
		select {
		case inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (n *Node) emit(msg *pubsub.Message) {
	if msg.ReceivedFrom == n.host.ID() && !n.config.EchoOwnMessages {
		return
	}
	var from *string
	if source := msg.GetFrom(); source != "" {
		from = lo.ToPtr(source.String())
	}
	payload, err := EncodeMessageEvent(string(msg.Data), from)
	if err != nil {
		n.log.Error("Message event encoding failed", "error", err)
		return
	}
	n.emitter.Emit(MessageChannel, payload)
}

// Close stops discovery, leaves the topic and shuts the host down.
func (n *Node) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		if n.mdns != nil {
			_ = n.mdns.Close()
		}
		n.sub.Cancel()
		err = n.host.Close()
	})
	return err
}

// discoveryNotifee connects to every peer announced by mDNS.
type discoveryNotifee struct {
	node *Node
}

func (d *discoveryNotifee) HandlePeerFound(info peer.AddrInfo) {
	if info.ID == d.node.host.ID() {
		return
	}
	if err := d.node.host.Connect(context.Background(), info); err != nil {
		d.node.log.Debug("Discovered peer unreachable", "peer_id", info.ID.String(), "error", err)
		return
	}
	d.node.log.Info("Peer discovered", "peer_id", info.ID.String())
}
