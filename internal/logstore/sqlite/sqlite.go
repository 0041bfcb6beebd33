// Package sqlite stores the attendance log in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

type Store struct {
	db      *sql.DB
	migrate func(ctx context.Context) error
}

// New wraps an open database. migrate may be nil.
func New(db *sql.DB, migrate func(ctx context.Context) error) *Store {
	return &Store{db: db, migrate: migrate}
}

func (s *Store) Init(ctx context.Context) error {
	if s.migrate != nil {
		if err := s.migrate(ctx); err != nil {
			return fmt.Errorf("migrate attendance log: %w", err)
		}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return classify(fmt.Errorf("ping attendance log: %w", err))
	}
	return nil
}

func (s *Store) AppendEntry(ctx context.Context, personID, name string, entryTime time.Time) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attendance_log(person_id, name, entry_at_ms, created_at_ms)
VALUES (?, ?, ?, ?);
`, personID, name, entryTime.UTC().UnixMilli(), time.Now().UTC().UnixMilli())
	if err != nil {
		return classify(fmt.Errorf("AppendEntry insert: %w", err))
	}
	return nil
}

func (s *Store) UpdateExit(ctx context.Context, personID string, exitTime time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE attendance_log SET exit_at_ms = ?
WHERE id = (
  SELECT id FROM attendance_log
  WHERE person_id = ? AND exit_at_ms IS NULL
  ORDER BY id DESC
  LIMIT 1
);
`, exitTime.UTC().UnixMilli(), personID)
	if err != nil {
		return classify(fmt.Errorf("UpdateExit update: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateExit rows affected: %w", err)
	}
	if n == 0 {
		return logstore.ErrNoOpenRow
	}
	return nil
}

func (s *Store) Records(ctx context.Context) ([]logstore.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT person_id, name, entry_at_ms, exit_at_ms
FROM attendance_log
ORDER BY id ASC;
`)
	if err != nil {
		return nil, classify(fmt.Errorf("Records query: %w", err))
	}
	defer rows.Close()

	var out []logstore.Record
	for rows.Next() {
		var (
			rec     logstore.Record
			entryMs int64
			exitMs  sql.NullInt64
		)
		if err := rows.Scan(&rec.PersonID, &rec.Name, &entryMs, &exitMs); err != nil {
			return nil, fmt.Errorf("Records scan: %w", err)
		}
		rec.EntryAt = time.UnixMilli(entryMs)
		if exitMs.Valid {
			exit := time.UnixMilli(exitMs.Int64)
			rec.ExitAt = &exit
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("Records rows: %w", err))
	}

	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func classify(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return domain.ErrStoreBusy.WithError(err)
		}
	}
	return err
}
