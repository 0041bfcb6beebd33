package domain

import (
	"time"

	"github.com/google/uuid"
)

// Side is the presence classification of a person relative to the office.
type Side string

const (
	SideUnknown Side = ""
	SideInside  Side = "inside"
	SideOutside Side = "outside"
)

// PersonState is the presence state kept for one recognized identity.
type PersonState struct {
	PersonID      string     `json:"person_id"`
	Name          string     `json:"name"`
	Side          Side       `json:"side"`
	LastEntryTime *time.Time `json:"last_entry_time,omitempty"`
	LastExitTime  *time.Time `json:"last_exit_time,omitempty"`
	LastEventTime time.Time  `json:"last_event_time"`
	EntryCount    int        `json:"entry_count"`
	ExitCount     int        `json:"exit_count"`
	FirstSeen     time.Time  `json:"first_seen"`
}

// Phase is the attendance state machine position derived from the
// entry/exit timestamp pair.
type Phase string

const (
	PhaseNew     Phase = "new"
	PhaseInside  Phase = "inside"
	PhaseOutside Phase = "outside"
)

func (s *PersonState) Phase() Phase {
	switch {
	case s == nil:
		return PhaseNew
	case s.LastExitTime != nil:
		return PhaseOutside
	case s.LastEntryTime != nil:
		return PhaseInside
	default:
		return PhaseNew
	}
}

// EventKind tags the outcome of a single policy decision.
type EventKind string

const (
	EventSeen           EventKind = "seen"
	EventEntry          EventKind = "entry"
	EventExit           EventKind = "exit"
	EventReEntry        EventKind = "reentry"
	EventBlockedExit    EventKind = "blocked_exit"
	EventBlockedReEntry EventKind = "blocked_reentry"
	EventUnregistered   EventKind = "unregistered"
	EventNoOp           EventKind = "noop"
)

// Accepted reports whether the event changed a person's presence.
func (k EventKind) Accepted() bool {
	switch k {
	case EventEntry, EventExit, EventReEntry:
		return true
	}
	return false
}

// Event is emitted by the transition policy for every evaluated signal.
type Event struct {
	ID         uuid.UUID     `json:"id"`
	Kind       EventKind     `json:"kind"`
	PersonID   string        `json:"person_id,omitempty"`
	Name       string        `json:"name,omitempty"`
	Side       Side          `json:"side,omitempty"`
	Score      float64       `json:"score,omitempty"`
	At         time.Time     `json:"at"`
	Remaining  time.Duration `json:"remaining,omitempty"`
	EntryCount int           `json:"entry_count,omitempty"`
	ExitCount  int           `json:"exit_count,omitempty"`
}

// NewEvent builds an event for a person, stamping a fresh ID.
func NewEvent(kind EventKind, state PersonState, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		PersonID:   state.PersonID,
		Name:       state.Name,
		Side:       state.Side,
		At:         at,
		EntryCount: state.EntryCount,
		ExitCount:  state.ExitCount,
	}
}
