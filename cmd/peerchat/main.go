package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"peer-chat/contract"
	"peer-chat/infrastructure/p2p"
	"peer-chat/infrastructure/transport"
	"peer-chat/internal"
	"peer-chat/moderation"
	"peer-chat/projection"
	"peer-chat/runtime/workers"
	"peer-chat/services"
	"peer-chat/sink"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the transport plugin, the bridge, the transcript controller and
// the terminal. Deferred cleanups run before main exits.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	policy, err := services.ParsePolicy(config.DedupPolicy, config.AnonymousPolicy)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	censor, err := newCensor(log, config)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Transport plugin
	sup := workers.NewSupervisor(log, config.RestartInterval)
	plugin, err := newPlugin(ctx, log, config, sup)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing transport...")
		_ = plugin.Close()
	}()

	// 4. Transcript
	bridge := transport.NewBridge(log, plugin)
	controller := services.NewTranscriptController(log, bridge, policy, config.BufferSize)
	if err = controller.Start(); err != nil {
		return err
	}
	defer controller.Close()

	// 5. Terminal
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("terminal setup failed: %w", err)
	}
	defer rl.Close()

	timeline := projection.NewTimeline(controller, censor)
	console := NewConsole(rl.Stdout(), timeline)
	sup.Add(workers.NewTranscriptFanout(log, controller.Events(), config.SinkTimeout,
		timeline, console, sink.NewLogSink(log)))

	supervised := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervised)
	}()

	go func() {
		// Unblocks Readline on SIGTERM
		<-ctx.Done()
		_ = rl.Close()
	}()

	fmt.Fprintf(rl.Stdout(), "Local peer id: %s\n", plugin.LocalPeerID())
	prompt := NewPrompt(rl, controller, console, plugin)
	loopErr := prompt.Loop(ctx)

	// 6. Final Cleanup
	stop()
	sup.Stop()
	<-supervised
	log.Info("Program stopped cleanly")
	return loopErr
}

// transportPlugin is what main needs from a plugin on top of the contract.
type transportPlugin interface {
	contract.Plugin
	Peers() []string
	Close() error
}

func newPlugin(ctx context.Context, log *slog.Logger, config internal.Config, sup *workers.Supervisor) (transportPlugin, error) {
	switch config.Transport {
	case internal.TransportLoopback:
		hub := p2p.NewHub(log, config.EchoOwnMessages)
		return &loopbackPlugin{Loopback: hub.Join(uuid.NewString()), hub: hub}, nil
	default:
		node, err := p2p.NewNode(ctx, log, p2p.NodeConfig{
			ListenAddress:   config.ListenAddress,
			Topic:           config.Topic,
			EnableMDNS:      config.EnableMDNS,
			MDNSServiceTag:  config.MDNSServiceTag,
			EchoOwnMessages: config.EchoOwnMessages,
		})
		if err != nil {
			return nil, fmt.Errorf("libp2p node failed to start: %w", err)
		}
		sup.Add(node)
		return node, nil
	}
}

type loopbackPlugin struct {
	*p2p.Loopback
	hub *p2p.Hub
}

func (l *loopbackPlugin) Close() error {
	l.hub.Close()
	return nil
}

// newCensor returns nil when no word is configured.
func newCensor(log *slog.Logger, config internal.Config) (projection.Censor, error) {
	words := moderation.ParseWords(config.CensoredWords)
	if len(words) == 0 {
		return nil, nil
	}
	mask, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(log, words, mask)
}
