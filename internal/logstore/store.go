// Package logstore defines the attendance log contract shared by the
// spreadsheet and SQL backends, plus the replay that rebuilds presence
// state from it.
package logstore

import (
	"context"
	"errors"
	"time"
)

// ErrNoOpenRow is returned by UpdateExit when the person has no row
// without an exit time.
var ErrNoOpenRow = errors.New("no open attendance row")

// Header is the fixed column layout of the attendance log.
var Header = []string{"date", "entry_time", "exit_time", "person_id", "name", "duration"}

// Store persists attendance rows. Implementations wrap a locked backing
// store in domain.ErrStoreBusy.
type Store interface {
	// Init prepares the backing store. Safe to call more than once.
	Init(ctx context.Context) error
	AppendEntry(ctx context.Context, personID, name string, entryTime time.Time) error
	// UpdateExit closes the newest open row of the person.
	UpdateExit(ctx context.Context, personID string, exitTime time.Time) error
	// Records returns every row in insertion order.
	Records(ctx context.Context) ([]Record, error)
	Close() error
}

// Record is one attendance row.
type Record struct {
	PersonID string     `json:"person_id"`
	Name     string     `json:"name"`
	EntryAt  time.Time  `json:"entry_at"`
	ExitAt   *time.Time `json:"exit_at,omitempty"`
}

// Open reports whether the row still waits for an exit.
func (r Record) Open() bool {
	return r.ExitAt == nil
}

// Duration is exit minus entry, zero for an open row.
func (r Record) Duration() time.Duration {
	if r.ExitAt == nil {
		return 0
	}
	return r.ExitAt.Sub(r.EntryAt)
}

// Date returns the calendar day of the entry in the log date format.
func (r Record) Date() string {
	return r.EntryAt.Format(DateLayout)
}
