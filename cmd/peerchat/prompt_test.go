package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"peer-chat/domain/event"
	"peer-chat/infrastructure/p2p"
	"peer-chat/infrastructure/transport"
	"peer-chat/projection"
	"peer-chat/services"
	"testing"

	"github.com/chzyer/readline"
	"github.com/gookit/color"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines []string
	errs  []error
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line, err := s.lines[0], s.errs[0]
	s.lines, s.errs = s.lines[1:], s.errs[1:]
	return line, err
}

type session struct {
	controller *services.TranscriptController
	timeline   *projection.Timeline
	console    *Console
	out        *bytes.Buffer
	plugin     *p2p.Loopback
	hub        *p2p.Hub
}

func newSession(t *testing.T) session {
	t.Helper()
	color.Disable()
	hub := p2p.NewHub(slog.Default(), false)
	plugin := hub.Join("local-peer")
	controller := services.NewTranscriptController(slog.Default(), transport.NewBridge(slog.Default(), plugin), services.DefaultPolicy(), 64)
	require.NoError(t, controller.Start())
	t.Cleanup(controller.Close)

	out := &bytes.Buffer{}
	timeline := projection.NewTimeline(controller, nil)
	return session{
		controller: controller,
		timeline:   timeline,
		console:    NewConsole(out, timeline),
		out:        out,
		plugin:     plugin,
		hub:        hub,
	}
}

// drain pushes pending transcript events through timeline then console.
func (s session) drain(t *testing.T) {
	t.Helper()
	for {
		select {
		case evt := <-s.controller.Events():
			require.NoError(t, s.timeline.Consume(context.Background(), evt))
			require.NoError(t, s.console.Consume(context.Background(), evt))
		default:
			return
		}
	}
}

func TestPrompt_Loop(t *testing.T) {
	req := require.New(t)
	s := newSession(t)
	s.hub.Join("remote-peer-0001")

	reader := &scriptedReader{
		lines: []string{"hello", "   ", "", "again", "/quit", "never read"},
		errs:  []error{nil, nil, readline.ErrInterrupt, nil, nil, nil},
	}
	prompt := NewPrompt(reader, s.controller, s.console, s.plugin)

	// When the user types a line, a blank line, then interrupts an empty prompt
	err := prompt.Loop(context.Background())

	// Then only the first line was sent and the loop stopped at the interrupt
	req.NoError(err)
	req.Len(s.controller.View(), 1)
	req.Equal("hello", s.controller.View()[0].Text())
	req.Len(reader.lines, 3)
	req.ElementsMatch([]string{"remote-peer-0001"}, s.plugin.Peers())
}

func TestPrompt_Handle_CommandsAreNotSent(t *testing.T) {
	req := require.New(t)
	s := newSession(t)
	prompt := NewPrompt(&scriptedReader{}, s.controller, s.console, s.plugin)

	req.False(prompt.Handle(context.Background(), "/peers"))
	req.False(prompt.Handle(context.Background(), "/history"))
	req.True(prompt.Handle(context.Background(), " /quit "))

	req.Empty(s.controller.View())
	req.Contains(s.out.String(), "no peer connected")
}

func TestConsole_PrintsNewLinesOnce(t *testing.T) {
	req := require.New(t)
	s := newSession(t)
	remote := s.hub.Join("remote-peer-12345678")
	payload, err := p2p.EncodeBroadcast("hi from remote")
	req.NoError(err)

	req.NoError(s.controller.Submit(context.Background(), "hi from me"))
	req.NoError(remote.Invoke(context.Background(), p2p.BroadcastCommand, payload))
	s.drain(t)

	output := s.out.String()
	req.Contains(output, "hi from me")
	req.Contains(output, "[12345678] hi from remote")

	// Consuming again prints nothing new
	s.out.Reset()
	req.NoError(s.console.Consume(context.Background(), event.MessageAppended{}))
	req.Empty(s.out.String())

	// History lists both lines
	s.console.History()
	req.Contains(s.out.String(), "hi from me")
	req.Contains(s.out.String(), "12345678")
}
