package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

func TestMemory_GetOrCreate(t *testing.T) {
	m := NewMemory()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	st, created := m.GetOrCreate("p1", "", func(st *domain.PersonState) {
		st.Side = domain.SideInside
		st.FirstSeen = now
	})
	require.True(t, created)
	assert.Equal(t, "p1", st.PersonID)
	assert.Equal(t, "p1", st.Name, "name defaults to id")
	assert.Equal(t, domain.SideInside, st.Side)

	again, created := m.GetOrCreate("p1", "Other", func(st *domain.PersonState) {
		st.Side = domain.SideOutside
	})
	assert.False(t, created)
	assert.Equal(t, domain.SideInside, again.Side, "init runs only on creation")
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Update(t *testing.T) {
	m := NewMemory()

	err := m.Update("ghost", func(st *domain.PersonState) {})
	assert.ErrorIs(t, err, domain.ErrUnknownPerson)

	m.GetOrCreate("p1", "Alice", nil)
	require.NoError(t, m.Update("p1", func(st *domain.PersonState) {
		st.EntryCount = 3
		st.PersonID = "hijack"
	}))

	st, ok := m.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 3, st.EntryCount)
	assert.Equal(t, "p1", st.PersonID, "id cannot be rewritten")
	_, ok = m.Get("hijack")
	assert.False(t, ok)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.GetOrCreate("p1", "Alice", nil)

	st, _ := m.Get("p1")
	st.EntryCount = 99

	again, _ := m.Get("p1")
	assert.Zero(t, again.EntryCount)
}

func TestMemory_SnapshotOrderAndCounts(t *testing.T) {
	m := NewMemory()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	m.GetOrCreate("c", "Carol", func(st *domain.PersonState) { st.FirstSeen = base.Add(2 * time.Minute); st.Side = domain.SideOutside })
	m.GetOrCreate("a", "Alice", func(st *domain.PersonState) { st.FirstSeen = base; st.Side = domain.SideInside })
	m.GetOrCreate("b", "Bob", func(st *domain.PersonState) { st.FirstSeen = base.Add(time.Minute); st.Side = domain.SideInside })

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].PersonID, snap[1].PersonID, snap[2].PersonID})

	inside, outside := m.Counts()
	assert.Equal(t, 2, inside)
	assert.Equal(t, 1, outside)
}

func TestMemory_Restore(t *testing.T) {
	m := NewMemory()
	m.GetOrCreate("old", "Old", nil)

	entry := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m.Restore([]domain.PersonState{
		{PersonID: "p1", Name: "Alice", LastEntryTime: &entry, Side: domain.SideInside},
		{PersonID: "", Name: "skipped"},
	})

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("old")
	assert.False(t, ok)

	st, ok := m.Get("p1")
	require.True(t, ok)
	assert.Equal(t, domain.PhaseInside, st.Phase())
}

func TestMemory_ConcurrentReaders(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			id := string(rune('a' + i%26))
			m.GetOrCreate(id, "", nil)
			_ = m.Update(id, func(st *domain.PersonState) { st.EntryCount++ })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = m.Snapshot()
			_, _ = m.Counts()
		}
	}()
	wg.Wait()

	assert.Equal(t, 26, m.Len())
}
