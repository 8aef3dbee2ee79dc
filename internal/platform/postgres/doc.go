// Package postgres provides the PostgreSQL backend for the store interfaces:
// the pgx driver registration, connection pool settings, the SQL dialect and
// mapping of PostgreSQL error codes onto store errors.
package postgres
