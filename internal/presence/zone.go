package presence

import (
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

const (
	DefaultEventCooldown = 2500 * time.Millisecond
	DefaultLineY         = 240
)

// ZonePolicy counts crossings of a horizontal line. A flip of side is
// accepted only when the previous accepted flip is older than Cooldown;
// flips inside the window are dropped without touching state.
type ZonePolicy struct {
	Cooldown time.Duration
}

func NewZonePolicy(cooldown time.Duration) *ZonePolicy {
	if cooldown <= 0 {
		cooldown = DefaultEventCooldown
	}
	return &ZonePolicy{Cooldown: cooldown}
}

// SideOf classifies a face centre: above the line is inside.
func SideOf(centreY, lineY int) domain.Side {
	if centreY < lineY {
		return domain.SideInside
	}
	return domain.SideOutside
}

func (p *ZonePolicy) Name() string { return "zone" }

// Select keeps every match; they all share the single detected face position.
func (p *ZonePolicy) Select(matches []domain.Match) []domain.Match {
	return matches
}

func (p *ZonePolicy) ReportsUnregistered() bool { return false }

func (p *ZonePolicy) Decide(prev *domain.PersonState, sig Signal, now time.Time) Decision {
	if sig.Side == domain.SideUnknown {
		return Decision{Kind: domain.EventNoOp}
	}

	if prev == nil {
		st := newState(sig, now)
		st.Side = sig.Side
		return Decision{Kind: domain.EventSeen, State: st, Changed: true}
	}

	if prev.Side == sig.Side {
		return Decision{Kind: domain.EventNoOp, State: *prev}
	}

	if now.Sub(prev.LastEventTime) <= p.Cooldown {
		return Decision{Kind: domain.EventNoOp, State: *prev}
	}

	next := *prev
	next.Side = sig.Side
	next.LastEventTime = now

	kind := domain.EventEntry
	if sig.Side == domain.SideOutside {
		kind = domain.EventExit
		next.ExitCount++
	} else {
		next.EntryCount++
	}

	return Decision{Kind: kind, State: next, Changed: true}
}
