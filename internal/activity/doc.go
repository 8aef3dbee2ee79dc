// Package activity turns ActivityEvents into experience grants and
// multiplier changes. It is the single place deciding which engine reacts to
// which Discord activity.
package activity
