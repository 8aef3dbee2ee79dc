// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing leveling and ownership rules to
// remain independent of the database in use.
package store
