package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func alice() domain.Match {
	return domain.Match{PersonID: "p1", PersonName: "Alice", Score: 0.92}
}

func TestSideOf(t *testing.T) {
	assert.Equal(t, domain.SideInside, SideOf(100, 240))
	assert.Equal(t, domain.SideOutside, SideOf(240, 240))
	assert.Equal(t, domain.SideOutside, SideOf(400, 240))
}

func TestZonePolicy_Decide(t *testing.T) {
	p := NewZonePolicy(2500 * time.Millisecond)

	t.Run("first sighting is seen with zero event time", func(t *testing.T) {
		d := p.Decide(nil, Signal{Match: alice(), Side: domain.SideInside}, t0)

		assert.Equal(t, domain.EventSeen, d.Kind)
		assert.True(t, d.Changed)
		assert.Equal(t, domain.SideInside, d.State.Side)
		assert.True(t, d.State.LastEventTime.IsZero())
		assert.Zero(t, d.State.EntryCount)
		assert.Equal(t, t0, d.State.FirstSeen)
	})

	t.Run("first flip after sighting is accepted immediately", func(t *testing.T) {
		prev := domain.PersonState{PersonID: "p1", Side: domain.SideInside}
		d := p.Decide(&prev, Signal{Match: alice(), Side: domain.SideOutside}, t0.Add(100*time.Millisecond))

		assert.Equal(t, domain.EventExit, d.Kind)
		assert.Equal(t, 1, d.State.ExitCount)
		assert.Equal(t, domain.SideOutside, d.State.Side)
	})

	t.Run("same side is a noop", func(t *testing.T) {
		prev := domain.PersonState{PersonID: "p1", Side: domain.SideOutside, LastEventTime: t0}
		d := p.Decide(&prev, Signal{Match: alice(), Side: domain.SideOutside}, t0.Add(time.Hour))

		assert.Equal(t, domain.EventNoOp, d.Kind)
		assert.False(t, d.Changed)
	})

	t.Run("flip inside cooldown is swallowed", func(t *testing.T) {
		prev := domain.PersonState{PersonID: "p1", Side: domain.SideOutside, LastEventTime: t0}
		d := p.Decide(&prev, Signal{Match: alice(), Side: domain.SideInside}, t0.Add(2500*time.Millisecond))

		assert.Equal(t, domain.EventNoOp, d.Kind)
		assert.False(t, d.Changed)
	})

	t.Run("flip after cooldown is an entry", func(t *testing.T) {
		prev := domain.PersonState{PersonID: "p1", Side: domain.SideOutside, LastEventTime: t0, ExitCount: 1}
		now := t0.Add(2501 * time.Millisecond)
		d := p.Decide(&prev, Signal{Match: alice(), Side: domain.SideInside}, now)

		assert.Equal(t, domain.EventEntry, d.Kind)
		assert.Equal(t, 1, d.State.EntryCount)
		assert.Equal(t, 1, d.State.ExitCount)
		assert.Equal(t, now, d.State.LastEventTime)
	})

	t.Run("unknown side is ignored", func(t *testing.T) {
		d := p.Decide(nil, Signal{Match: alice()}, t0)
		assert.Equal(t, domain.EventNoOp, d.Kind)
		assert.False(t, d.Changed)
	})
}

func TestZonePolicy_DebounceIdempotence(t *testing.T) {
	p := NewZonePolicy(2500 * time.Millisecond)
	prev := domain.PersonState{PersonID: "p1", Side: domain.SideInside, LastEventTime: t0}
	sig := Signal{Match: alice(), Side: domain.SideOutside}

	for _, offset := range []time.Duration{0, 500 * time.Millisecond, time.Second, 2 * time.Second} {
		d := p.Decide(&prev, sig, t0.Add(offset))
		require.False(t, d.Changed, "offset %s", offset)
		if d.Changed {
			prev = d.State
		}
	}

	assert.Equal(t, domain.SideInside, prev.Side)
	assert.Equal(t, t0, prev.LastEventTime)
}

func TestZonePolicy_SingleCountPerCrossing(t *testing.T) {
	p := NewZonePolicy(2500 * time.Millisecond)
	m := NewMemory()

	// known outside, last transition long ago
	m.Restore([]domain.PersonState{{PersonID: "p1", Name: "Alice", Side: domain.SideOutside, LastEventTime: t0.Add(-time.Hour)}})

	sides := []domain.Side{domain.SideInside, domain.SideOutside, domain.SideInside, domain.SideOutside}
	transitions := 0
	for i, side := range sides {
		prev, _ := m.Get("p1")
		d := p.Decide(&prev, Signal{Match: alice(), Side: side}, t0.Add(time.Duration(i)*250*time.Millisecond))
		if d.Changed {
			transitions++
			require.NoError(t, m.Update("p1", func(st *domain.PersonState) { *st = d.State }))
		}
	}

	st, _ := m.Get("p1")
	assert.Equal(t, 1, transitions)
	assert.Equal(t, 1, st.EntryCount)
	assert.Equal(t, 0, st.ExitCount)
	assert.Equal(t, domain.SideInside, st.Side)
}

func TestZonePolicy_SelectKeepsAll(t *testing.T) {
	p := NewZonePolicy(0)
	matches := []domain.Match{alice(), {PersonID: "p2"}}

	assert.Equal(t, matches, p.Select(matches))
	assert.Equal(t, DefaultEventCooldown, p.Cooldown)
	assert.False(t, p.ReportsUnregistered())
}
