package testdb_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/pokepc/internal/testdb"
)

func countCreatures(t *testing.T, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) int {
	t.Helper()
	var n int
	require.NoError(t, q.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM pokemon").Scan(&n))
	return n
}

func TestWithTx_RollsBack(t *testing.T) {
	db := testdb.OpenSQLite(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.ExecContext(context.Background(),
			`INSERT INTO pokemon (poke_api_id, level, experience, held_by, health, attack, defense, special_attack, special_defense, speed)
			 VALUES (25, 1, 0, 'ash', 35, 55, 40, 50, 50, 90)`)
		require.NoError(t, err)
		assert.Equal(t, 1, countCreatures(t, tx))
	})

	assert.Equal(t, 0, countCreatures(t, db))
}

func TestOpenPostgres_SkipsWithoutURL(t *testing.T) {
	t.Setenv(testdb.DatabaseURLEnv, "")
	assert.True(t, testdb.ShouldSkipDatabaseTest())
}
