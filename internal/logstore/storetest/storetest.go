// Package storetest holds the behaviour every logstore backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

// Run exercises a backend returned by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) logstore.Store) {
	t.Helper()

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)

	t.Run("init is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Init(ctx))
		require.NoError(t, s.Init(ctx))

		records, err := s.Records(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("append then update exit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Init(ctx))

		require.NoError(t, s.AppendEntry(ctx, "p1", "Alice", base))
		require.NoError(t, s.UpdateExit(ctx, "p1", base.Add(25*time.Minute)))

		records, err := s.Records(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "p1", records[0].PersonID)
		assert.Equal(t, "Alice", records[0].Name)
		assert.True(t, records[0].EntryAt.Equal(base))
		require.NotNil(t, records[0].ExitAt)
		assert.Equal(t, 25*time.Minute, records[0].Duration())
	})

	t.Run("update exit without open row", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Init(ctx))

		err := s.UpdateExit(ctx, "ghost", base)
		assert.True(t, errors.Is(err, logstore.ErrNoOpenRow), "got %v", err)
	})

	t.Run("update exit closes only the newest open row of that person", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Init(ctx))

		require.NoError(t, s.AppendEntry(ctx, "p1", "Alice", base))
		require.NoError(t, s.UpdateExit(ctx, "p1", base.Add(30*time.Minute)))
		require.NoError(t, s.AppendEntry(ctx, "p2", "Bob", base.Add(time.Hour)))
		require.NoError(t, s.AppendEntry(ctx, "p1", "Alice", base.Add(22*time.Hour)))
		require.NoError(t, s.UpdateExit(ctx, "p1", base.Add(23*time.Hour)))

		records, err := s.Records(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, 30*time.Minute, records[0].Duration())
		assert.True(t, records[1].Open())
		require.NotNil(t, records[2].ExitAt)
		assert.True(t, records[2].ExitAt.Equal(base.Add(23*time.Hour)))
	})

	t.Run("restore round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Init(ctx))

		require.NoError(t, s.AppendEntry(ctx, "p1", "Alice", base))
		require.NoError(t, s.UpdateExit(ctx, "p1", base.Add(time.Hour)))
		require.NoError(t, s.AppendEntry(ctx, "p2", "Bob", base.Add(2*time.Hour)))

		states, err := logstore.Restore(ctx, s)
		require.NoError(t, err)
		require.Len(t, states, 2)

		assert.Equal(t, "p1", states[0].PersonID)
		assert.Equal(t, domain.PhaseOutside, states[0].Phase())
		require.NotNil(t, states[0].LastExitTime)
		assert.True(t, states[0].LastExitTime.Equal(base.Add(time.Hour)))

		assert.Equal(t, "p2", states[1].PersonID)
		assert.Equal(t, domain.PhaseInside, states[1].Phase())
		assert.Nil(t, states[1].LastExitTime)
	})
}
