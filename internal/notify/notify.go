// Package notify announces presence events to the people at the door.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Notifier is fire-and-forget: implementations never block the poll loop
// on slow output and never return errors.
type Notifier interface {
	Notify(ctx context.Context, ev domain.Event)
	// Report surfaces an operational error that needs a human, such as a
	// locked attendance log.
	Report(ctx context.Context, err error)
}

const storeBusyPhrase = "Close the attendance log"

var phrases = map[domain.EventKind]string{
	domain.EventEntry:          "Good morning, you are checked in",
	domain.EventExit:           "Checkout successful",
	domain.EventReEntry:        "Welcome back",
	domain.EventBlockedExit:    "You cannot exit yet",
	domain.EventBlockedReEntry: "Re-entry blocked",
	domain.EventUnregistered:   "Person not registered",
}

// Phrase is the spoken text for an event, empty when the event is silent.
func Phrase(ev domain.Event) string {
	return phrases[ev.Kind]
}

// ErrorPhrase is the spoken text for a reported error, empty when silent.
func ErrorPhrase(err error) string {
	if errors.Is(err, domain.ErrStoreBusy) {
		return storeBusyPhrase
	}
	return ""
}

var labels = map[domain.EventKind]string{
	domain.EventSeen:           "DETECTED",
	domain.EventEntry:          "ENTRY",
	domain.EventExit:           "EXIT",
	domain.EventReEntry:        "RE-ENTRY",
	domain.EventBlockedExit:    "EXIT BLOCKED",
	domain.EventBlockedReEntry: "RE-ENTRY BLOCKED",
	domain.EventUnregistered:   "PERSON NOT REGISTERED",
}

// Describe renders an event as a single status line without timestamp.
func Describe(ev domain.Event) string {
	label, ok := labels[ev.Kind]
	if !ok {
		label = string(ev.Kind)
	}

	if ev.Kind == domain.EventUnregistered {
		return label
	}

	line := fmt.Sprintf("%s → %s", label, ev.Name)
	if ev.Remaining > 0 {
		line += fmt.Sprintf(" (%s left)", formatRemaining(ev.Remaining))
	}
	return line
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "<1m"
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// Multi fans out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev domain.Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}

func (m Multi) Report(ctx context.Context, err error) {
	for _, n := range m {
		n.Report(ctx, err)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Notify(context.Context, domain.Event) {}
func (Nop) Report(context.Context, error)        {}
