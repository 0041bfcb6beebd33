package presence

import (
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

const (
	DefaultMinExitGap   = 20 * time.Minute
	DefaultReentryBlock = 21 * time.Hour
)

// AttendancePolicy is the check-in/check-out state machine:
//
//	NEW     -> INSIDE   first sighting
//	INSIDE  -> OUTSIDE  after MinExitGap inside
//	OUTSIDE -> INSIDE   after ReentryBlock outside
type AttendancePolicy struct {
	MinExitGap   time.Duration
	ReentryBlock time.Duration
}

func NewAttendancePolicy(minExitGap, reentryBlock time.Duration) *AttendancePolicy {
	if minExitGap <= 0 {
		minExitGap = DefaultMinExitGap
	}
	if reentryBlock <= 0 {
		reentryBlock = DefaultReentryBlock
	}
	return &AttendancePolicy{MinExitGap: minExitGap, ReentryBlock: reentryBlock}
}

func (p *AttendancePolicy) Name() string { return "attendance" }

// Select keeps the best match only.
func (p *AttendancePolicy) Select(matches []domain.Match) []domain.Match {
	if len(matches) == 0 {
		return nil
	}
	return matches[:1]
}

func (p *AttendancePolicy) ReportsUnregistered() bool { return true }

func (p *AttendancePolicy) Decide(prev *domain.PersonState, sig Signal, now time.Time) Decision {
	switch prev.Phase() {
	case domain.PhaseInside:
		inside := now.Sub(*prev.LastEntryTime)
		if inside < p.MinExitGap {
			return Decision{Kind: domain.EventBlockedExit, State: *prev, Remaining: p.MinExitGap - inside}
		}

		next := *prev
		next.LastExitTime = timePtr(now)
		next.LastEventTime = now
		next.Side = domain.SideOutside
		next.ExitCount++
		return Decision{Kind: domain.EventExit, State: next, Changed: true}

	case domain.PhaseOutside:
		outside := now.Sub(*prev.LastExitTime)
		if outside < p.ReentryBlock {
			return Decision{Kind: domain.EventBlockedReEntry, State: *prev, Remaining: p.ReentryBlock - outside}
		}

		next := *prev
		next.LastEntryTime = timePtr(now)
		next.LastExitTime = nil
		next.LastEventTime = now
		next.Side = domain.SideInside
		next.EntryCount++
		return Decision{Kind: domain.EventReEntry, State: next, Changed: true}

	default:
		var next domain.PersonState
		if prev != nil {
			next = *prev
		} else {
			next = newState(sig, now)
		}
		if next.FirstSeen.IsZero() {
			next.FirstSeen = now
		}
		next.LastEntryTime = timePtr(now)
		next.LastExitTime = nil
		next.LastEventTime = now
		next.Side = domain.SideInside
		next.EntryCount++
		return Decision{Kind: domain.EventEntry, State: next, Changed: true}
	}
}
