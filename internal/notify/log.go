package notify

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Log writes events as structured log lines.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(ctx context.Context, ev domain.Event) {
	if ev.Kind == domain.EventNoOp {
		return
	}

	attrs := []any{
		slog.String("event_id", ev.ID.String()),
		slog.String("kind", string(ev.Kind)),
	}
	if ev.PersonID != "" {
		attrs = append(attrs,
			slog.String("person_id", ev.PersonID),
			slog.String("name", ev.Name),
			slog.String("side", string(ev.Side)),
		)
	}
	if ev.Remaining > 0 {
		attrs = append(attrs, slog.Duration("remaining", ev.Remaining))
	}

	l.logger.InfoContext(ctx, "presence event", attrs...)
}

func (l *Log) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.logger.ErrorContext(ctx, "operator attention required", slog.String("error", err.Error()))
}
