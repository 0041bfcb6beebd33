// Package app wires the poller, the presence tracker, the attendance log
// and the status API into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/api"
	"github.com/saturnino-fabrica-de-software/portaria/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/config"
	"github.com/saturnino-fabrica-de-software/portaria/internal/face"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
	"github.com/saturnino-fabrica-de-software/portaria/internal/notify"
	"github.com/saturnino-fabrica-de-software/portaria/internal/people"
	"github.com/saturnino-fabrica-de-software/portaria/internal/poller"
	"github.com/saturnino-fabrica-de-software/portaria/internal/presence"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
	"github.com/saturnino-fabrica-de-software/portaria/internal/webhook"
	"github.com/saturnino-fabrica-de-software/portaria/internal/ws"
)

const (
	shutdownTimeout      = 10 * time.Second
	restoreRetryInterval = 3 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string

	source     poller.Source
	display    poller.Display
	recognizer provider.Recognizer
	notifier   notify.Notifier
	store      logstore.Store
	ready      handler.ReadyFunc

	tracker *presence.Tracker
	poller  *poller.Poller
	router  *api.Router
	hub     *ws.Hub
	webhook *webhook.Worker
	speech  *notify.Speech

	restoreRetry time.Duration
}

type Option func(*App)

// WithDisplay draws the preview overlay, usually the same camera as the
// source.
func WithDisplay(d poller.Display) Option {
	return func(a *App) { a.display = d }
}

// WithRecognizer replaces the recognizer built from the configuration.
func WithRecognizer(r provider.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

// WithNotifier replaces the console, log and speech notifiers.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithStore replaces the store built from the configuration. Ignored in
// zone mode.
func WithStore(s logstore.Store) Option {
	return func(a *App) { a.store = s }
}

func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

// New builds every component for cfg.Mode. source is owned by the caller.
func New(ctx context.Context, cfg *config.Config, source poller.Source, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		version: "dev",
		source:  source,

		restoreRetry: restoreRetryInterval,
	}
	for _, opt := range opts {
		opt(a)
	}

	auditLogger := audit.NewSlogLogger(logger)

	if a.recognizer == nil {
		directory, err := people.Load(cfg.PeopleFile)
		if err != nil {
			return nil, err
		}
		r, err := face.NewRecognizer(ctx, cfg, directory, auditLogger)
		if err != nil {
			return nil, err
		}
		a.recognizer = r
	}

	if a.notifier == nil {
		multi := notify.Multi{notify.NewConsole(nil), notify.NewLog(logger)}
		if cfg.SpeechEnabled {
			a.speech = notify.NewSpeech(cfg.SpeechCommand, logger)
			multi = append(multi, a.speech)
		}
		a.notifier = multi
	}

	notifier := notify.Multi{a.notifier}
	if cfg.HTTPEnabled {
		a.hub = ws.NewHub()
		notifier = append(notifier, a.hub)
	}
	if cfg.WebhookURL != "" {
		a.webhook = webhook.NewWorker(webhook.DefaultConfig(cfg.WebhookURL, cfg.WebhookSecret), logger)
		notifier = append(notifier, a.webhook)
	}

	trackerOpts := []presence.Option{
		presence.WithNotifier(notifier),
		presence.WithAudit(auditLogger),
	}

	var policy presence.Policy
	switch cfg.Mode {
	case config.ModeZone:
		policy = presence.NewZonePolicy(cfg.EventCooldown)
		a.store = nil

	default:
		policy = presence.NewAttendancePolicy(cfg.MinExitGap, cfg.ReentryBlock)
		if a.store == nil {
			store, ready, err := OpenStore(ctx, cfg, logger)
			if err != nil {
				a.closeNotifier()
				return nil, err
			}
			a.store, a.ready = store, ready
		}
		trackerOpts = append(trackerOpts, presence.WithStore(a.store))
	}

	a.tracker = presence.NewTracker(presence.NewMemory(), policy, logger, trackerOpts...)

	pollerOpts := []poller.Option{
		poller.WithCooldown(cfg.APICooldown),
		poller.WithSearchOptions(provider.SearchOptions{
			MinScore:   cfg.MinScore,
			Mode:       provider.ParseSearchMode(cfg.SearchMode),
			MaxResults: provider.DefaultSearchOptions().MaxResults,
		}),
		poller.WithCallTimeout(cfg.RecognitionTimeout),
		poller.WithLineY(cfg.LineY),
	}
	if a.display != nil {
		pollerOpts = append(pollerOpts, poller.WithDisplay(a.display))
	}
	a.poller = poller.New(a.source, a.recognizer, a.tracker, logger, pollerOpts...)

	if cfg.HTTPEnabled {
		deps := &api.Dependencies{
			Presence: a.tracker.Memory(),
			Mode:     cfg.Mode,
			Ready:    a.ready,
			Version:  a.version,
			Events:   a.hub,
		}
		if a.store != nil {
			deps.Records = a.store
		}
		a.router = api.NewRouter(logger, deps)
		a.router.Setup()
	}

	return a, nil
}

func (a *App) Tracker() *presence.Tracker { return a.tracker }

// Router is nil when the status API is disabled.
func (a *App) Router() *api.Router { return a.router }

// Run restores presence from the log, waiting while it is locked, serves the status API and polls
// until ctx is cancelled, the preview quits or the camera fails. Queued
// log writes are flushed before it returns.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting portaria",
		slog.String("mode", a.cfg.Mode),
		slog.String("recognizer", a.recognizer.Name()),
		slog.Duration("api_cooldown", a.cfg.APICooldown),
	)

	// o polling só começa com a memória restaurada do log
	if _, err := a.tracker.RestoreWhenReady(ctx, a.restoreRetry); err != nil {
		closeErr := a.close()
		if ctx.Err() != nil {
			return closeErr
		}
		return errors.Join(fmt.Errorf("restore presence: %w", err), closeErr)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	if a.hub != nil {
		go a.hub.Run(pollCtx)
	}
	if a.webhook != nil {
		go a.webhook.Run(pollCtx)
	}
	if a.router != nil {
		go func() {
			addr := fmt.Sprintf(":%d", a.cfg.Port)
			a.logger.Info("status api listening", slog.String("addr", addr))
			if err := a.router.Listen(addr); err != nil {
				errChan <- err
			}
		}()
	}

	pollErr := make(chan error, 1)
	go func() { pollErr <- a.poller.Run(pollCtx) }()

	var runErr error
	select {
	case runErr = <-pollErr:
	case err := <-errChan:
		runErr = fmt.Errorf("status api: %w", err)
		cancel()
		<-pollErr
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down")

	var errs []error
	if a.router != nil {
		if err := a.router.Shutdown(); err != nil {
			a.logger.Error("status api shutdown error", slog.Any("error", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.tracker.Flush(ctx); err != nil {
		a.logger.Error("attendance writes lost", slog.Any("error", err))
		errs = append(errs, err)
	}

	return errors.Join(append(errs, a.close())...)
}

// close releases the store and the speech worker.
func (a *App) close() error {
	var err error
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}
	a.closeNotifier()
	return err
}

func (a *App) closeNotifier() {
	if a.speech != nil {
		_ = a.speech.Close()
	}
}
