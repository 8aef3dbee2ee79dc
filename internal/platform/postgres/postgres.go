package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	// pgx registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/pokepc/internal/platform/sqlstore"
	"github.com/phrazzld/pokepc/internal/store"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// Dialect is the PostgreSQL sqlstore.Dialect.
type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) MapError(err error) error { return MapError(err) }

// Open connects to PostgreSQL with the pool settings the bot uses.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	return sqlstore.Open(ctx, DriverName, url, sqlstore.PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}, 5*time.Second)
}

// NewCreatureStore creates a PostgreSQL-backed store.CreatureStore.
func NewCreatureStore(db store.DBTX, logger *slog.Logger) *sqlstore.CreatureStore {
	return sqlstore.NewCreatureStore(db, Dialect{}, logger)
}
