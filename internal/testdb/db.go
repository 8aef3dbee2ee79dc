package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/platform/migrations"
	"github.com/phrazzld/pokepc/internal/platform/postgres"
	"github.com/phrazzld/pokepc/internal/platform/sqlite"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 30 * time.Second

// DatabaseURLEnv names the PostgreSQL connection string for integration tests.
const DatabaseURLEnv = "DATABASE_URL"

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests.
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// ShouldSkipDatabaseTest reports whether PostgreSQL tests must be skipped.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// OpenSQLite opens a private in-memory SQLite database with every migration
// applied. It is closed when the test ends.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err, "opening sqlite")
	t.Cleanup(func() { CleanupDB(t, db) })

	migrate(t, ctx, db, migrations.SQLite)
	return db
}

// OpenPostgres connects to DATABASE_URL and applies every migration, or
// skips the test when the variable is unset.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if ShouldSkipDatabaseTest() {
		t.Skip(DatabaseURLEnv + " not set - skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, GetTestDatabaseURL())
	require.NoError(t, err, "opening postgres")
	t.Cleanup(func() { CleanupDB(t, db) })

	migrate(t, ctx, db, migrations.Postgres)
	return db
}

func migrate(t *testing.T, ctx context.Context, db *sql.DB, dialect string) {
	t.Helper()
	_, log := logger.NewCapture()
	require.NoError(t, migrations.Run(ctx, db, dialect, "up", log), "applying migrations")
}

// CleanupDB closes db, reporting failures without failing the test.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database: %v", err)
	}
}

// WithTx runs fn in a transaction that is always rolled back, so changes
// never outlive the test.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "beginning test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
