package sink

import (
	"context"
	"log/slog"
	"peer-chat/domain/event"
	"peer-chat/projection"
)

// LogSink records every transcript append in the structured log.
// Message bodies are only logged at debug level.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(ctx context.Context, e event.MessageAppended) error {
	origin := e.Message.Origin()
	l.log.InfoContext(ctx, "Transcript entry appended",
		"index", e.Index,
		"origin", origin.Kind.String(),
		"author", projection.AuthorLabel(origin),
		"id", e.Message.ID().String(),
	)
	l.log.DebugContext(ctx, "Transcript entry text", "index", e.Index, "text", e.Message.Text())
	return nil
}
