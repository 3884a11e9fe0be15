package main

import (
	"context"
	"io"
	"peer-chat/services"
	"strings"

	"github.com/chzyer/readline"
)

const (
	peersCommand   = "/peers"
	historyCommand = "/history"
	quitCommand    = "/quit"
)

type lineReader interface {
	Readline() (string, error)
}

type peerLister interface {
	Peers() []string
}

// Prompt turns terminal lines into draft updates and submissions.
type Prompt struct {
	reader     lineReader
	controller services.ITranscriptController
	console    *Console
	peers      peerLister
}

func NewPrompt(reader lineReader, controller services.ITranscriptController, console *Console, peers peerLister) *Prompt {
	return &Prompt{reader: reader, controller: controller, console: console, peers: peers}
}

// Loop reads lines until EOF, /quit, an interrupt on an empty line or ctx end.
func (p *Prompt) Loop(ctx context.Context) error {
	for {
		line, err := p.reader.Readline()
		switch {
		case ctx.Err() != nil:
			return nil
		case err == readline.ErrInterrupt:
			if line == "" {
				return nil
			}
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if quit := p.Handle(ctx, line); quit {
			return nil
		}
	}
}

// Handle processes one line and reports whether the user asked to quit.
func (p *Prompt) Handle(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case quitCommand:
		return true
	case peersCommand:
		p.console.Peers(p.peers.Peers())
		return false
	case historyCommand:
		p.console.History()
		return false
	}

	p.controller.UpdateDraft(line)
	// Blank input is rejected with ErrEmptyInput and the draft kept, nothing to show
	_ = p.controller.Submit(ctx, p.controller.Draft())
	return false
}
