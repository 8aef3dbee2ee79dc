package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/platform/postgres"
	"github.com/phrazzld/pokepc/internal/platform/sqlite"
	"github.com/phrazzld/pokepc/internal/platform/sqlstore"
	"github.com/phrazzld/pokepc/internal/redact"
)

// openDatabase connects to the configured database driver.
func openDatabase(ctx context.Context, env config.Environment, log *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch env.DBDriver {
	case "sqlite":
		db, err = sqlite.Open(ctx, env.DatabaseURL())
	default:
		db, err = postgres.Open(ctx, env.DatabaseURL())
	}
	if err != nil {
		log.Error("failed to open database",
			"driver", env.DBDriver,
			"error", redact.Error(err))
		return nil, fmt.Errorf("failed to open %s database: %w", env.DBDriver, err)
	}
	log.Info("database connection established", "driver", env.DBDriver)
	return db, nil
}

// newCreatureStore builds the creature store for the configured driver.
func newCreatureStore(env config.Environment, db *sql.DB, log *slog.Logger) *sqlstore.CreatureStore {
	if env.DBDriver == "sqlite" {
		return sqlite.NewCreatureStore(db, log)
	}
	return postgres.NewCreatureStore(db, log)
}
