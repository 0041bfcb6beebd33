package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/portaria/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/portaria/internal/config"
	"github.com/saturnino-fabrica-de-software/portaria/internal/database"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/memory"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/postgres"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/sqlite"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/xlsx"
)

// OpenStore builds the configured attendance log backend and runs Init on
// it. The returned probe backs the /ready endpoint.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (logstore.Store, handler.ReadyFunc, error) {
	var (
		store logstore.Store
		ready handler.ReadyFunc
	)

	switch cfg.Store {
	case config.StoreXLSX:
		store = xlsx.New(cfg.XLSXPath, logger)
		ready = func(context.Context) error {
			_, err := os.Stat(cfg.XLSXPath)
			return err
		}

	case config.StorePostgres:
		pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, domain.ErrStoreUnavailable.WithError(err)
		}
		var migrate postgres.MigrateFunc
		if cfg.AutoMigrate {
			migrate = func(ctx context.Context) error {
				return database.MigratePostgres(ctx, cfg.DatabaseURL)
			}
		}
		store = postgres.New(pool, migrate)
		ready = pool.Ping

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, domain.ErrStoreUnavailable.WithError(err)
		}
		var migrate func(ctx context.Context) error
		if cfg.AutoMigrate {
			migrate = func(ctx context.Context) error {
				return database.MigrateSQLite(ctx, cfg.SQLitePath)
			}
		}
		store = sqlite.New(db, migrate)
		ready = db.PingContext

	case config.StoreMemory:
		store = memory.New()

	default:
		return nil, nil, domain.ErrInvalidConfig.WithError(fmt.Errorf("unknown store %q", cfg.Store))
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("init %s store: %w", cfg.Store, err)
	}

	logger.Info("attendance log ready", slog.String("store", cfg.Store))
	return store, ready, nil
}
