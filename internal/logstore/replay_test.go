package logstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestReplay(t *testing.T) {
	t.Run("empty log", func(t *testing.T) {
		assert.Empty(t, Replay(nil))
	})

	t.Run("later rows override earlier ones", func(t *testing.T) {
		states := Replay([]Record{
			{PersonID: "p1", Name: "Alice", EntryAt: at(8, 0), ExitAt: ptr(at(9, 0))},
			{PersonID: "p2", Name: "Bob", EntryAt: at(8, 30)},
			{PersonID: "p1", Name: "Alice B.", EntryAt: at(10, 0)},
		})

		require.Len(t, states, 2)

		alice := states[0]
		assert.Equal(t, "p1", alice.PersonID)
		assert.Equal(t, "Alice B.", alice.Name)
		assert.Equal(t, at(10, 0), *alice.LastEntryTime)
		assert.Nil(t, alice.LastExitTime, "open row after a closed one must clear the exit")
		assert.Equal(t, domain.SideInside, alice.Side)
		assert.Equal(t, at(8, 0), alice.FirstSeen)

		bob := states[1]
		assert.Equal(t, domain.PhaseInside, bob.Phase())
	})

	t.Run("closed last row leaves person outside", func(t *testing.T) {
		states := Replay([]Record{
			{PersonID: "p1", Name: "Alice", EntryAt: at(8, 0), ExitAt: ptr(at(17, 0))},
		})

		require.Len(t, states, 1)
		assert.Equal(t, domain.PhaseOutside, states[0].Phase())
		assert.Equal(t, domain.SideOutside, states[0].Side)
		assert.Equal(t, at(17, 0), states[0].LastEventTime)
	})

	t.Run("skips rows without id and defaults name", func(t *testing.T) {
		states := Replay([]Record{
			{PersonID: "", Name: "nobody", EntryAt: at(8, 0)},
			{PersonID: "p9", EntryAt: at(8, 0)},
		})

		require.Len(t, states, 1)
		assert.Equal(t, "p9", states[0].Name)
	})

	t.Run("counters are not restored", func(t *testing.T) {
		states := Replay([]Record{
			{PersonID: "p1", EntryAt: at(8, 0), ExitAt: ptr(at(9, 0))},
			{PersonID: "p1", EntryAt: at(10, 0)},
		})

		require.Len(t, states, 1)
		assert.Zero(t, states[0].EntryCount)
		assert.Zero(t, states[0].ExitCount)
	})
}
