package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/portaria/internal/config"
	"github.com/saturnino-fabrica-de-software/portaria/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <up|down|version|force> [version]",
	Short: "Manage the attendance log schema",
	Long: `Apply or roll back migrations of the SQL attendance log (STORE=postgres or
STORE=sqlite). Spreadsheet and memory stores have no schema.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"up", "down", "version", "force"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func openMigrator(ctx context.Context, cfg *config.Config) (*database.Migrator, error) {
	var (
		db  *sql.DB
		err error
		m   *database.Migrator
	)

	switch cfg.Store {
	case config.StorePostgres:
		if db, err = database.OpenPostgres(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		m, err = database.NewPostgresMigrator(db)
	case config.StoreSQLite:
		if db, err = database.OpenSQLite(ctx, cfg.SQLitePath); err != nil {
			return nil, err
		}
		m, err = database.NewSQLiteMigrator(db)
	default:
		return nil, fmt.Errorf("store %q has no migrations", cfg.Store)
	}

	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	migrator, err := openMigrator(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	switch args[0] {
	case "up":
		logger.Info("running migrations", "store", cfg.Store)
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		fmt.Println("✓ Migrations completed successfully")

	case "down":
		logger.Info("rolling back last migration", "store", cfg.Store)
		if err := migrator.Down(); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		fmt.Println("✓ Migration rolled back successfully")

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (DIRTY - migration incomplete)\n", version)
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := migrator.Force(version); err != nil {
			return err
		}
		fmt.Printf("✓ Forced version %d\n", version)

	default:
		return fmt.Errorf("unknown action %q (use up, down, version or force)", args[0])
	}

	return nil
}
