package logstore

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Replay folds log rows into one presence state per person. A later row
// replaces everything an earlier row said about the same person, so an
// open row after a closed one leaves the person inside.
func Replay(records []Record) []domain.PersonState {
	index := make(map[string]int)
	var states []domain.PersonState

	for _, rec := range records {
		if rec.PersonID == "" {
			continue
		}

		entry := rec.EntryAt
		st := domain.PersonState{
			PersonID:      rec.PersonID,
			Name:          rec.Name,
			LastEntryTime: &entry,
			LastEventTime: entry,
			Side:          domain.SideInside,
			FirstSeen:     entry,
		}
		if st.Name == "" {
			st.Name = rec.PersonID
		}
		if rec.ExitAt != nil {
			exit := *rec.ExitAt
			st.LastExitTime = &exit
			st.LastEventTime = exit
			st.Side = domain.SideOutside
		}

		if i, ok := index[rec.PersonID]; ok {
			st.FirstSeen = states[i].FirstSeen
			states[i] = st
			continue
		}
		index[rec.PersonID] = len(states)
		states = append(states, st)
	}

	return states
}

// Restore reads every record from the store and replays it.
func Restore(ctx context.Context, store Store) ([]domain.PersonState, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read attendance log: %w", err)
	}
	return Replay(records), nil
}
