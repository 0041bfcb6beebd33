// Package presence turns recognition results into entry and exit
// decisions per person.
package presence

import (
	"sort"
	"sync"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Memory holds one PersonState per person id. The poll loop is the only
// writer; the status API reads snapshots concurrently.
type Memory struct {
	mu     sync.RWMutex
	people map[string]*domain.PersonState
}

func NewMemory() *Memory {
	return &Memory{people: make(map[string]*domain.PersonState)}
}

func (m *Memory) Get(personID string) (domain.PersonState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.people[personID]
	if !ok {
		return domain.PersonState{}, false
	}
	return *st, true
}

// GetOrCreate returns the state of personID, creating it with init applied
// to a baseline when the person has never been seen. created reports
// whether this call created it.
func (m *Memory) GetOrCreate(personID, name string, init func(*domain.PersonState)) (state domain.PersonState, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.people[personID]; ok {
		return *st, false
	}

	if name == "" {
		name = personID
	}
	st := &domain.PersonState{PersonID: personID, Name: name}
	if init != nil {
		init(st)
	}
	st.PersonID = personID
	m.people[personID] = st

	return *st, true
}

// Update applies mutate to an existing person.
func (m *Memory) Update(personID string, mutate func(*domain.PersonState)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.people[personID]
	if !ok {
		return domain.ErrUnknownPerson
	}
	mutate(st)
	st.PersonID = personID
	return nil
}

// Snapshot returns copies of every state ordered by first sighting.
func (m *Memory) Snapshot() []domain.PersonState {
	m.mu.RLock()
	out := make([]domain.PersonState, 0, len(m.people))
	for _, st := range m.people {
		out = append(out, *st)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out
}

// Counts returns how many known people are on each side.
func (m *Memory) Counts() (inside, outside int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, st := range m.people {
		switch st.Side {
		case domain.SideInside:
			inside++
		case domain.SideOutside:
			outside++
		}
	}
	return inside, outside
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.people)
}

// Restore replaces the whole memory with states, typically the result of
// replaying the attendance log.
func (m *Memory) Restore(states []domain.PersonState) {
	people := make(map[string]*domain.PersonState, len(states))
	for i := range states {
		st := states[i]
		if st.PersonID == "" {
			continue
		}
		people[st.PersonID] = &st
	}

	m.mu.Lock()
	m.people = people
	m.mu.Unlock()
}
