package workers

import (
	"context"
	"log/slog"
	"peer-chat/contract"
	"peer-chat/domain/event"
	"time"
)

// TranscriptFanout forwards transcript events to in-process sinks (timeline,
// console, logs). Best-effort: a slow or failing sink only loses its own copy.
// Sinks are called one after the other so each sees events in transcript order.
type TranscriptFanout struct {
	log         *slog.Logger
	events      <-chan event.MessageAppended
	sinks       []contract.TranscriptSink
	sinkTimeout time.Duration
}

func NewTranscriptFanout(log *slog.Logger, events <-chan event.MessageAppended, sinkTimeout time.Duration, sinks ...contract.TranscriptSink) *TranscriptFanout {
	return &TranscriptFanout{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

// Run returns nil once the event stream is closed.
func (w *TranscriptFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Transcript events closed, stopping fanout")
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout One sink after the other for each event
func (w *TranscriptFanout) Fanout(ctx context.Context, evt event.MessageAppended) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume transcript event", "index", evt.Index, "error", err)
		}
		cancel()
	}
}
