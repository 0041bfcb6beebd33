package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/notify"
)

// Worker delivers presence events to one endpoint in the background. It
// is a notify.Notifier: Notify and Report only enqueue, and a full queue
// drops the event.
type Worker struct {
	sender      *Sender
	maxAttempts int
	queue       chan job
	logger      *slog.Logger
	now         func() time.Time
	backoff     func(attempt int) time.Duration
}

var _ notify.Notifier = (*Worker)(nil)

func NewWorker(cfg Config, logger *slog.Logger) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Worker{
		sender:      NewSender(cfg),
		maxAttempts: cfg.MaxAttempts,
		queue:       make(chan job, cfg.QueueSize),
		logger:      logger.With("component", "webhook"),
		now:         time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

func (w *Worker) Notify(_ context.Context, ev domain.Event) {
	if ev.Kind == domain.EventNoOp {
		return
	}
	w.enqueue(EventPresence, ev)
}

func (w *Worker) Report(_ context.Context, err error) {
	if err == nil {
		return
	}
	w.enqueue(EventAlert, map[string]string{"message": err.Error()})
}

func (w *Worker) enqueue(eventType string, data interface{}) {
	payload, err := json.Marshal(EventPayload{Type: eventType, Data: data, Timestamp: w.now()})
	if err != nil {
		w.logger.Error("failed to marshal webhook event", "error", err)
		return
	}

	select {
	case w.queue <- job{eventType: eventType, payload: payload}:
	default:
		w.logger.Warn("webhook queue full, event dropped", "event_type", eventType)
	}
}

// Run delivers queued events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("webhook worker started")

	for {
		select {
		case <-ctx.Done():
			if n := len(w.queue); n > 0 {
				w.logger.Warn("webhook worker stopped with undelivered events", "count", n)
			} else {
				w.logger.Info("webhook worker stopped")
			}
			return
		case j := <-w.queue:
			w.deliver(ctx, j)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, j job) {
	for {
		err := w.sender.Send(ctx, j.eventType, j.payload)
		if err == nil {
			w.logger.Debug("webhook delivered", "event_type", j.eventType, "attempts", j.attempts+1)
			return
		}

		j.attempts++
		if j.attempts >= w.maxAttempts {
			w.logger.Warn("webhook delivery failed", "event_type", j.eventType, "attempts", j.attempts, "error", err)
			return
		}

		delay := w.backoff(j.attempts)
		w.logger.Info("webhook scheduled for retry", "attempts", j.attempts, "next_retry", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
