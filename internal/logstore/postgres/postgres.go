// Package postgres stores the attendance log in a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

// PgxPool is the subset of *pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// MigrateFunc brings the schema up to date before the first write.
type MigrateFunc func(ctx context.Context) error

type Store struct {
	pool    PgxPool
	migrate MigrateFunc
}

// New returns a store over pool. migrate may be nil when the schema is
// managed with the migrate command.
func New(pool PgxPool, migrate MigrateFunc) *Store {
	return &Store{pool: pool, migrate: migrate}
}

func (s *Store) Init(ctx context.Context) error {
	if s.migrate != nil {
		if err := s.migrate(ctx); err != nil {
			return fmt.Errorf("migrate attendance log: %w", err)
		}
	}

	if err := s.pool.Ping(ctx); err != nil {
		return classify(fmt.Errorf("ping attendance log: %w", err))
	}
	return nil
}

func (s *Store) AppendEntry(ctx context.Context, personID, name string, entryTime time.Time) error {
	query := `
		INSERT INTO attendance_log (person_id, name, entry_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.pool.Exec(ctx, query, personID, name, entryTime); err != nil {
		return classify(fmt.Errorf("append entry: %w", err))
	}
	return nil
}

func (s *Store) UpdateExit(ctx context.Context, personID string, exitTime time.Time) error {
	query := `
		UPDATE attendance_log SET exit_at = $2
		WHERE id = (
			SELECT id FROM attendance_log
			WHERE person_id = $1 AND exit_at IS NULL
			ORDER BY id DESC
			LIMIT 1
		)
	`

	tag, err := s.pool.Exec(ctx, query, personID, exitTime)
	if err != nil {
		return classify(fmt.Errorf("update exit: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return logstore.ErrNoOpenRow
	}
	return nil
}

func (s *Store) Records(ctx context.Context) ([]logstore.Record, error) {
	query := `
		SELECT person_id, name, entry_at, exit_at
		FROM attendance_log
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("list records: %w", err))
	}
	defer rows.Close()

	var records []logstore.Record
	for rows.Next() {
		var rec logstore.Record
		if err := rows.Scan(&rec.PersonID, &rec.Name, &rec.EntryAt, &rec.ExitAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate records: %w", err))
	}

	return records, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// lock_not_available, query_canceled (statement/lock timeout), deadlock_detected
var busyCodes = map[string]bool{
	"55P03": true,
	"57014": true,
	"40P01": true,
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && busyCodes[pgErr.Code] {
		return domain.ErrStoreBusy.WithError(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domain.ErrStoreUnavailable.WithError(err)
	}

	return err
}
