package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

func insideSince(at time.Time) *domain.PersonState {
	return &domain.PersonState{PersonID: "p1", Name: "Alice", LastEntryTime: &at, Side: domain.SideInside, EntryCount: 1, FirstSeen: at}
}

func outsideSince(entry, exit time.Time) *domain.PersonState {
	return &domain.PersonState{PersonID: "p1", Name: "Alice", LastEntryTime: &entry, LastExitTime: &exit, Side: domain.SideOutside, EntryCount: 1, ExitCount: 1, FirstSeen: entry}
}

func TestAttendancePolicy_FirstSighting(t *testing.T) {
	p := NewAttendancePolicy(20*time.Minute, 21*time.Hour)

	d := p.Decide(nil, Signal{Match: alice()}, t0)

	assert.Equal(t, domain.EventEntry, d.Kind)
	require.True(t, d.Changed)
	assert.Equal(t, "p1", d.State.PersonID)
	assert.Equal(t, "Alice", d.State.Name)
	assert.Equal(t, t0, *d.State.LastEntryTime)
	assert.Nil(t, d.State.LastExitTime)
	assert.Equal(t, domain.SideInside, d.State.Side)
	assert.Equal(t, t0, d.State.FirstSeen)
}

func TestAttendancePolicy_MinimumDwell(t *testing.T) {
	p := NewAttendancePolicy(20*time.Minute, 21*time.Hour)
	prev := insideSince(t0)

	blocked := p.Decide(prev, Signal{Match: alice()}, t0.Add(10*time.Minute))
	assert.Equal(t, domain.EventBlockedExit, blocked.Kind)
	assert.False(t, blocked.Changed)
	assert.Equal(t, 10*time.Minute, blocked.Remaining)
	assert.Nil(t, blocked.State.LastExitTime)

	exitAt := t0.Add(21 * time.Minute)
	accepted := p.Decide(prev, Signal{Match: alice()}, exitAt)
	assert.Equal(t, domain.EventExit, accepted.Kind)
	require.True(t, accepted.Changed)
	assert.Equal(t, exitAt, *accepted.State.LastExitTime)
	assert.Equal(t, t0, *accepted.State.LastEntryTime)
	assert.Equal(t, domain.SideOutside, accepted.State.Side)
	assert.Equal(t, 1, accepted.State.ExitCount)
}

func TestAttendancePolicy_ExitExactlyAtGap(t *testing.T) {
	p := NewAttendancePolicy(20*time.Minute, 21*time.Hour)

	d := p.Decide(insideSince(t0), Signal{Match: alice()}, t0.Add(20*time.Minute))
	assert.Equal(t, domain.EventExit, d.Kind)
}

func TestAttendancePolicy_ReentryCooldown(t *testing.T) {
	p := NewAttendancePolicy(20*time.Minute, 21*time.Hour)
	exit := t0.Add(8 * time.Hour)
	prev := outsideSince(t0, exit)

	blocked := p.Decide(prev, Signal{Match: alice()}, exit.Add(time.Hour))
	assert.Equal(t, domain.EventBlockedReEntry, blocked.Kind)
	assert.False(t, blocked.Changed)
	assert.Equal(t, 20*time.Hour, blocked.Remaining)

	reentryAt := exit.Add(22 * time.Hour)
	accepted := p.Decide(prev, Signal{Match: alice()}, reentryAt)
	assert.Equal(t, domain.EventReEntry, accepted.Kind)
	require.True(t, accepted.Changed)
	assert.Equal(t, reentryAt, *accepted.State.LastEntryTime)
	assert.Nil(t, accepted.State.LastExitTime)
	assert.Equal(t, domain.SideInside, accepted.State.Side)
	assert.Equal(t, 2, accepted.State.EntryCount)
}

func TestAttendancePolicy_RestoredWithoutTimestampsIsNew(t *testing.T) {
	p := NewAttendancePolicy(0, 0)
	prev := &domain.PersonState{PersonID: "p1", Name: "Alice", FirstSeen: t0.Add(-time.Hour)}

	d := p.Decide(prev, Signal{Match: alice()}, t0)

	assert.Equal(t, domain.EventEntry, d.Kind)
	assert.Equal(t, t0.Add(-time.Hour), d.State.FirstSeen)
	assert.Equal(t, DefaultMinExitGap, p.MinExitGap)
	assert.Equal(t, DefaultReentryBlock, p.ReentryBlock)
}

func TestAttendancePolicy_SelectFirstOnly(t *testing.T) {
	p := NewAttendancePolicy(0, 0)

	assert.Nil(t, p.Select(nil))
	assert.Equal(t, []domain.Match{alice()}, p.Select([]domain.Match{alice(), {PersonID: "p2"}}))
	assert.True(t, p.ReportsUnregistered())
}
