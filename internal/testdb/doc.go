// Package testdb opens migrated databases for tests and isolates each test
// in a transaction that is rolled back when it completes.
//
//	func TestStore(t *testing.T) {
//	    db := testdb.OpenSQLite(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        creatures := sqlite.NewCreatureStore(tx, nil)
//	        ...
//	    })
//	}
//
// PostgreSQL tests call OpenPostgres, which skips the test unless
// DATABASE_URL is set.
package testdb
