package sink

import (
	"bytes"
	"context"
	"log/slog"
	"peer-chat/domain"
	"peer-chat/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogSink_Consume(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink := NewLogSink(log)

	evt := event.MessageAppended{Index: 3, Message: domain.NewMessage("secret", domain.Remote("abcdef12345678"), time.Now())}

	req.NoError(sink.Consume(context.Background(), evt))

	output := buf.String()
	req.Contains(output, "index=3")
	req.Contains(output, "origin=remote")
	req.Contains(output, "author=12345678")
	// The body stays out of info logs
	req.NotContains(output, "secret")
}
