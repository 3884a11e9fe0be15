package main

import (
	"context"
	"fmt"
	"io"
	"peer-chat/domain/event"
	"peer-chat/projection"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Console prints timeline lines as they show up.
// It must be registered after the timeline in the fanout.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	timeline *projection.Timeline
	printed  int
}

func NewConsole(out io.Writer, timeline *projection.Timeline) *Console {
	return &Console{out: out, timeline: timeline}
}

func (c *Console) Consume(_ context.Context, _ event.MessageAppended) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.timeline.Since(c.printed) {
		if _, err := fmt.Fprintln(c.out, formatLine(line)); err != nil {
			return err
		}
		c.printed = line.Index + 1
	}
	return nil
}

// History renders the whole timeline as a table.
func (c *Console) History() {
	c.mu.Lock()
	defer c.mu.Unlock()

	table := newTable(c.out, "#", "At", "Author", "Message")
	for _, line := range c.timeline.Lines() {
		table.Append([]string{
			fmt.Sprint(line.Index),
			line.At.Format(time.TimeOnly),
			line.Author,
			line.Text,
		})
	}
	table.Render()
}

// Peers renders the connected peers as a table.
func (c *Console) Peers(peers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(peers) == 0 {
		fmt.Fprintln(c.out, color.New(color.FgDarkGray).Render("no peer connected"))
		return
	}
	table := newTable(c.out, "Peer", "Short")
	for _, p := range peers {
		table.Append([]string{p, projection.ShortPeerID(p)})
	}
	table.Render()
}

func formatLine(line projection.Line) string {
	if line.Local {
		return fmt.Sprintf("%s %s",
			color.New(color.FgDarkGray).Render(line.At.Format(time.TimeOnly)),
			color.New(color.FgMagenta).Render(line.Text),
		)
	}
	return fmt.Sprintf("%s %s %s",
		color.New(color.FgDarkGray).Render(line.At.Format(time.TimeOnly)),
		color.New(color.FgCyan, color.OpBold).Render("["+line.Author+"]"),
		line.Text,
	)
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
