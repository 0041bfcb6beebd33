// Package memory is an in-process attendance log for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

type Store struct {
	mu      sync.Mutex
	records []logstore.Record
}

func New() *Store {
	return &Store{}
}

func (s *Store) Init(_ context.Context) error {
	return nil
}

func (s *Store) AppendEntry(_ context.Context, personID, name string, entryTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, logstore.Record{
		PersonID: personID,
		Name:     name,
		EntryAt:  entryTime,
	})
	return nil
}

func (s *Store) UpdateExit(_ context.Context, personID string, exitTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		rec := &s.records[i]
		if rec.PersonID == personID && rec.Open() {
			exit := exitTime
			rec.ExitAt = &exit
			return nil
		}
	}
	return logstore.ErrNoOpenRow
}

func (s *Store) Records(_ context.Context) ([]logstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]logstore.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
