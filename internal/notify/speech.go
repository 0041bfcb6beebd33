package notify

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

const (
	speechQueueSize = 4
	speechTimeout   = 10 * time.Second
)

// Runner executes one text-to-speech command.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Speech speaks event phrases through an external TTS command such as
// espeak. Phrases are spoken one at a time by a single worker; when the
// queue is full new phrases are dropped.
type Speech struct {
	command string
	run     Runner
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan string
	done   chan struct{}
}

func NewSpeech(command string, logger *slog.Logger) *Speech {
	return newSpeech(command, execRunner, logger)
}

func newSpeech(command string, run Runner, logger *slog.Logger) *Speech {
	s := &Speech{
		command: command,
		run:     run,
		logger:  logger.With("component", "speech"),
		queue:   make(chan string, speechQueueSize),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Speech) Notify(_ context.Context, ev domain.Event) {
	s.say(Phrase(ev))
}

func (s *Speech) Report(_ context.Context, err error) {
	s.say(ErrorPhrase(err))
}

func (s *Speech) say(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.queue <- text:
	default:
		s.logger.Debug("speech queue full, dropping phrase", slog.String("text", text))
	}
}

func (s *Speech) worker() {
	defer close(s.done)

	for text := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), speechTimeout)
		if err := s.run(ctx, s.command, text); err != nil {
			s.logger.Warn("speech command failed",
				slog.String("command", s.command),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Close stops accepting phrases and waits for the queued ones to finish.
func (s *Speech) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}
