package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
	"github.com/saturnino-fabrica-de-software/portaria/internal/notify"
)

// pendingWrite is an accepted transition the log store refused because it
// was locked.
type pendingWrite struct {
	kind     domain.EventKind
	personID string
	name     string
	at       time.Time
}

// Tracker applies a Policy to Memory for every recognition cycle, persists
// accepted transitions and announces the outcome.
type Tracker struct {
	memory   *Memory
	policy   Policy
	store    logstore.Store
	notifier notify.Notifier
	audit    audit.Logger
	logger   *slog.Logger

	mu      sync.Mutex
	pending []pendingWrite
}

type Option func(*Tracker)

// WithStore persists accepted transitions. Without it nothing is written.
func WithStore(store logstore.Store) Option {
	return func(t *Tracker) { t.store = store }
}

func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithAudit(l audit.Logger) Option {
	return func(t *Tracker) { t.audit = l }
}

func NewTracker(memory *Memory, policy Policy, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		memory:   memory,
		policy:   policy,
		notifier: notify.Nop{},
		audit:    &audit.NoOpLogger{},
		logger:   logger.With("component", "tracker", "policy", policy.Name()),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Memory() *Memory { return t.memory }

func (t *Tracker) Policy() Policy { return t.policy }

// Restore rebuilds memory from the attendance log.
func (t *Tracker) Restore(ctx context.Context) (int, error) {
	if t.store == nil {
		return 0, nil
	}

	states, err := logstore.Restore(ctx, t.store)
	if err != nil {
		return 0, err
	}
	t.memory.Restore(states)

	t.logger.InfoContext(ctx, "presence restored from attendance log", slog.Int("people", len(states)))
	return len(states), nil
}

// RestoreWhenReady calls Restore until the log can be read. A locked log
// is reported and retried every interval; any other failure is returned
// so polling never starts with an empty memory.
func (t *Tracker) RestoreWhenReady(ctx context.Context, interval time.Duration) (int, error) {
	for {
		n, err := t.Restore(ctx)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, domain.ErrStoreBusy) {
			return 0, err
		}

		t.logger.WarnContext(ctx, "attendance log locked, waiting to restore", slog.Any("error", err))
		t.notifier.Report(ctx, err)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
}

// Observe evaluates one recognition cycle. side is the face position for
// the zone policy and is ignored by the attendance policy.
func (t *Tracker) Observe(ctx context.Context, matches []domain.Match, side domain.Side, now time.Time) []domain.Event {
	t.retryPending(ctx)

	matches = domain.NormalizeMatches(matches)
	if len(matches) == 0 {
		if !t.policy.ReportsUnregistered() {
			return nil
		}
		ev := domain.Event{ID: uuid.New(), Kind: domain.EventUnregistered, At: now}
		t.publish(ctx, ev)
		return []domain.Event{ev}
	}

	selected := t.policy.Select(matches)
	events := make([]domain.Event, 0, len(selected))
	for _, m := range selected {
		events = append(events, t.observe(ctx, m, side, now))
	}
	return events
}

func (t *Tracker) observe(ctx context.Context, m domain.Match, side domain.Side, now time.Time) domain.Event {
	var prev *domain.PersonState
	if st, ok := t.memory.Get(m.PersonID); ok {
		prev = &st
	}

	d := t.policy.Decide(prev, Signal{Match: m, Side: side}, now)

	if d.Changed {
		apply := func(st *domain.PersonState) { *st = d.State }
		if prev == nil {
			t.memory.GetOrCreate(m.PersonID, m.DisplayName(), apply)
		} else if err := t.memory.Update(m.PersonID, apply); err != nil {
			t.logger.ErrorContext(ctx, "update presence", slog.String("person_id", m.PersonID), slog.String("error", err.Error()))
		}
	}

	ev := domain.NewEvent(d.Kind, d.State, now)
	ev.PersonID = m.PersonID
	if ev.Name == "" {
		ev.Name = m.DisplayName()
	}
	ev.Score = m.Score
	ev.Remaining = d.Remaining

	if d.Kind.Accepted() {
		t.persist(ctx, pendingWrite{kind: d.Kind, personID: ev.PersonID, name: ev.Name, at: now})
	}
	t.publish(ctx, ev)

	return ev
}

func (t *Tracker) publish(ctx context.Context, ev domain.Event) {
	if ev.Kind == domain.EventNoOp {
		return
	}

	t.notifier.Notify(ctx, ev)

	eventType := audit.EventPresenceChange
	switch ev.Kind {
	case domain.EventBlockedExit, domain.EventBlockedReEntry:
		eventType = audit.EventPresenceDenied
	case domain.EventUnregistered:
		eventType = audit.EventUnregistered
	}

	metadata := map[string]string{"kind": string(ev.Kind)}
	if ev.Side != domain.SideUnknown {
		metadata["side"] = string(ev.Side)
	}
	if ev.Remaining > 0 {
		metadata["remaining"] = ev.Remaining.Round(time.Second).String()
	}

	_ = t.audit.Log(ctx, audit.Event{
		ID:        ev.ID,
		Timestamp: ev.At,
		EventType: eventType,
		PersonID:  ev.PersonID,
		Success:   ev.Kind != domain.EventBlockedExit && ev.Kind != domain.EventBlockedReEntry,
		Metadata:  metadata,
	})
}

// persist writes w, or queues it behind earlier writes the store refused
// so rows keep their order.
func (t *Tracker) persist(ctx context.Context, w pendingWrite) {
	if t.store == nil {
		return
	}

	t.mu.Lock()
	if len(t.pending) > 0 {
		t.pending = append(t.pending, w)
		t.mu.Unlock()
		t.logger.WarnContext(ctx, "attendance write queued behind pending writes",
			slog.String("person_id", w.personID),
			slog.String("kind", string(w.kind)),
		)
		return
	}
	t.mu.Unlock()

	err := t.write(ctx, w)
	if t.handleWrite(ctx, w, err, true) {
		t.mu.Lock()
		t.pending = append(t.pending, w)
		t.mu.Unlock()
	}
}

// retryPending replays queued writes in order and stops at the first
// write the store still refuses.
func (t *Tracker) retryPending(ctx context.Context) {
	if t.store == nil {
		return
	}

	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for i, w := range pending {
		err := t.write(ctx, w)
		if t.handleWrite(ctx, w, err, false) {
			t.mu.Lock()
			t.pending = append(append([]pendingWrite(nil), pending[i:]...), t.pending...)
			t.mu.Unlock()
			return
		}
	}

	if len(pending) > 0 {
		t.logger.InfoContext(ctx, "pending attendance writes flushed", slog.Int("count", len(pending)))
	}
}

// Flush retries queued writes and reports how many could not be persisted.
func (t *Tracker) Flush(ctx context.Context) error {
	t.retryPending(ctx)

	if n := t.Pending(); n > 0 {
		return fmt.Errorf("%d attendance writes not persisted: %w", n, domain.ErrStoreBusy)
	}
	return nil
}

// Pending is the number of writes waiting for the store to unlock.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) write(ctx context.Context, w pendingWrite) error {
	switch w.kind {
	case domain.EventEntry, domain.EventReEntry:
		return t.store.AppendEntry(ctx, w.personID, w.name, w.at)
	case domain.EventExit:
		return t.store.UpdateExit(ctx, w.personID, w.at)
	}
	return nil
}

// handleWrite classifies a store result and reports whether the write
// must stay queued.
func (t *Tracker) handleWrite(ctx context.Context, w pendingWrite, err error, first bool) bool {
	attrs := []any{
		slog.String("person_id", w.personID),
		slog.String("kind", string(w.kind)),
	}

	switch {
	case err == nil:
		_ = t.audit.Log(ctx, audit.Event{
			EventType: audit.EventLogWrite,
			PersonID:  w.personID,
			Success:   true,
			Metadata:  map[string]string{"kind": string(w.kind)},
		})
		return false

	case errors.Is(err, domain.ErrStoreBusy):
		if first {
			t.logger.WarnContext(ctx, "attendance log busy, write queued", append(attrs, slog.String("error", err.Error()))...)
			t.notifier.Report(ctx, err)
		} else {
			t.logger.DebugContext(ctx, "attendance log still busy", attrs...)
		}
		return true

	case errors.Is(err, logstore.ErrNoOpenRow):
		t.logger.WarnContext(ctx, "no open attendance row for exit", attrs...)
		return false

	default:
		t.logger.ErrorContext(ctx, "attendance write failed", append(attrs, slog.String("error", err.Error()))...)
		t.notifier.Report(ctx, err)
		_ = t.audit.Log(ctx, audit.Event{
			EventType: audit.EventLogWrite,
			PersonID:  w.personID,
			Success:   false,
			Error:     err.Error(),
			Metadata:  map[string]string{"kind": string(w.kind)},
		})
		return false
	}
}
