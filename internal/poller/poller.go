package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/notify"
	"github.com/saturnino-fabrica-de-software/portaria/internal/presence"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

const (
	DefaultAttendanceCooldown = 2500 * time.Millisecond
	DefaultZoneCooldown       = 1200 * time.Millisecond
	defaultCallTimeout        = 10 * time.Second
)

// errQuit stops Run without an error when the operator presses q.
var errQuit = errors.New("quit requested")

// Poller drives one capture → recognize → track cycle per frame. It is
// single goroutine: Run must not be called concurrently.
type Poller struct {
	source     Source
	display    Display
	recognizer provider.Recognizer
	tracker    *presence.Tracker
	logger     *slog.Logger

	search   provider.SearchOptions
	cooldown time.Duration
	timeout  time.Duration
	lineY    int
	now      func() time.Time

	lastCall time.Time
	status   string
}

type Option func(*Poller)

func WithDisplay(d Display) Option {
	return func(p *Poller) { p.display = d }
}

// WithCooldown sets the minimum interval between recognizer calls.
func WithCooldown(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

func WithSearchOptions(opts provider.SearchOptions) Option {
	return func(p *Poller) { p.search = opts }
}

// WithCallTimeout bounds each recognizer call.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLineY(y int) Option {
	return func(p *Poller) { p.lineY = y }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func New(source Source, recognizer provider.Recognizer, tracker *presence.Tracker, logger *slog.Logger, opts ...Option) *Poller {
	p := &Poller{
		source:     source,
		recognizer: recognizer,
		tracker:    tracker,
		logger:     logger.With("component", "poller"),
		search:     provider.DefaultSearchOptions(),
		cooldown:   DefaultAttendanceCooldown,
		timeout:    defaultCallTimeout,
		lineY:      presence.DefaultLineY,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loops until ctx is cancelled, the operator quits, or the camera fails.
// Only a camera failure is returned as an error.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		"recognizer", p.recognizer.Name(),
		"policy", p.tracker.Policy().Name(),
		"cooldown", p.cooldown,
	)

	for {
		if ctx.Err() != nil {
			p.logger.Info("poller stopped")
			return nil
		}

		err := p.Step(ctx)
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			p.logger.Info("poller stopped by operator")
			return nil
		default:
			return err
		}
	}
}

// Step processes a single frame.
func (p *Poller) Step(ctx context.Context) error {
	frame, err := p.source.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return domain.ErrCaptureFailure.WithError(err)
	}

	now := p.now()
	if frame.HasFace && (p.lastCall.IsZero() || now.Sub(p.lastCall) > p.cooldown) {
		p.lastCall = now
		for _, ev := range p.cycle(ctx, frame, now) {
			if ev.Kind != domain.EventNoOp {
				p.status = notify.Describe(ev)
			}
		}
	}

	if p.display != nil && p.display.Show(p.overlay(now)) {
		return errQuit
	}
	return nil
}

// Status is the last event line shown on the overlay.
func (p *Poller) Status() string { return p.status }

func (p *Poller) cycle(ctx context.Context, frame Frame, now time.Time) []domain.Event {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	matches, err := p.recognizer.Search(callCtx, frame.Image, p.search)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNoFaceDetected):
			p.logger.DebugContext(ctx, "recognizer found no face", "error", err)
		case ctx.Err() != nil:
		default:
			p.logger.WarnContext(ctx, "recognition unavailable, cycle skipped",
				"error", err,
				"unavailable", errors.Is(err, domain.ErrRecognitionUnavailable),
			)
		}
		return nil
	}

	side := presence.SideOf(frame.CentreY, p.lineY)
	events := p.tracker.Observe(ctx, matches, side, now)

	for _, ev := range events {
		if ev.Kind == domain.EventNoOp {
			continue
		}
		p.logger.DebugContext(ctx, "presence event",
			"kind", ev.Kind,
			"person_id", ev.PersonID,
			"score", ev.Score,
		)
	}
	return events
}

func (p *Poller) overlay(now time.Time) Overlay {
	memory := p.tracker.Memory()
	inside, outside := memory.Counts()
	return Overlay{
		Now:     now,
		Mode:    p.tracker.Policy().Name(),
		LineY:   p.lineY,
		Inside:  inside,
		Outside: outside,
		People:  memory.Snapshot(),
		Status:  p.status,
	}
}
