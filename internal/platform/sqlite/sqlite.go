// Package sqlite provides the SQLite backend for the creature store. It is
// meant for local development and single-process deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/phrazzld/pokepc/internal/platform/sqlstore"
	"github.com/phrazzld/pokepc/internal/store"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Dialect is the SQLite sqlstore.Dialect.
type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) MapError(err error) error { return MapError(err) }

// DSN builds the connection string for path with foreign keys on and a busy
// timeout.
func DSN(path string) string {
	if path != MemoryPath {
		path = filepath.Clean(path)
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens the database at path. SQLite allows one writer, so the pool is
// limited to one connection; this also keeps an in-memory database alive
// across queries.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	return sqlstore.Open(ctx, DriverName, DSN(path), sqlstore.PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, 5*time.Second)
}

// NewCreatureStore creates a SQLite-backed store.CreatureStore.
func NewCreatureStore(db store.DBTX, logger *slog.Logger) *sqlstore.CreatureStore {
	return sqlstore.NewCreatureStore(db, Dialect{}, logger)
}

// MapError maps a SQLite error to a store error, wrapping the original.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK,
			sqlite3lib.SQLITE_CONSTRAINT_NOTNULL,
			sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	return err
}
