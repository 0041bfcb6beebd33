package presence

import (
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Signal is what one recognition cycle says about one person.
type Signal struct {
	Match domain.Match
	// Side is the face position relative to the zone line; unknown when
	// the capture layer could not place the face.
	Side domain.Side
}

// Decision is the policy outcome for one signal. State is the full next
// state and is only meaningful when Changed is true.
type Decision struct {
	Kind      domain.EventKind
	State     domain.PersonState
	Changed   bool
	Remaining time.Duration
}

// Policy decides transitions. prev is nil for a never-seen person.
type Policy interface {
	Name() string
	// Select picks which matches of a multi-match response are evaluated.
	Select(matches []domain.Match) []domain.Match
	Decide(prev *domain.PersonState, sig Signal, now time.Time) Decision
	// ReportsUnregistered tells whether an empty recognition result is an
	// event of its own.
	ReportsUnregistered() bool
}

func newState(sig Signal, now time.Time) domain.PersonState {
	return domain.PersonState{
		PersonID:  sig.Match.PersonID,
		Name:      sig.Match.DisplayName(),
		FirstSeen: now,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
