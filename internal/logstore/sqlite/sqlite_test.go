package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/database"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/sqlite"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/storetest"
)

// newTestStore returns a migrated store on a fresh database file. The
// store is closed automatically when the test finishes.
func newTestStore(t *testing.T) logstore.Store {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portaria.db")

	db, err := database.OpenSQLite(ctx, path)
	require.NoError(t, err)

	s := sqlite.New(db, func(ctx context.Context) error {
		return database.MigrateSQLite(ctx, path)
	})
	require.NoError(t, s.Init(ctx))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newTestStore)
}
