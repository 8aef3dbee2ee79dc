package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// NoExpiry may be passed as a ttl to store a key without expiration.
const NoExpiry time.Duration = 0

// DefaultTTL is the lifetime of cached remote lookups.
const DefaultTTL = 7 * 24 * time.Hour

// Store is the raw byte-level key-value backend behind Cache and Gate.
// A ttl of zero means the key never expires.
type Store interface {
	// Get returns the value stored at key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value unconditionally.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX writes value only if key does not exist and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Expire resets the lifetime of an existing key and reports whether the
	// key existed.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists the keys matching a glob pattern (*, ?, [...]), sorted.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
