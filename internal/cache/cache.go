package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// ErrSerialization is returned when a value cannot be encoded as JSON.
var ErrSerialization = errors.New("cache value is not serializable")

// Cache stores JSON encoded values in a Store.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// New creates a Cache over store.
func New(store Store, logger *slog.Logger) *Cache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		logger: logger.With(slog.String("component", "cache")),
	}
}

// Store exposes the underlying backend.
func (c *Cache) Store() Store {
	return c.store
}

// Entry is one result of GetByPattern. Found is false when the key expired
// between listing and reading it.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
	Found bool            `json:"found"`
}

// Ping checks that the backing store is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// GetOrCompute returns the value cached at key, or calls compute, caches its
// result and returns it. A hit with a positive ttl slides the key's expiry to
// ttl from now. A zero ttl stores without expiry. Errors from compute are
// returned as is and nothing is cached.
func GetOrCompute[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	compute func(ctx context.Context) (T, error),
) (T, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var value T
		decodeErr := json.Unmarshal(raw, &value)
		if decodeErr == nil {
			if ttl > 0 {
				if _, expireErr := c.store.Expire(ctx, key, ttl); expireErr != nil {
					log.Warn("failed to refresh cache ttl",
						slog.String("key", key),
						slog.Any("error", expireErr))
				}
			}
			return value, nil
		}
		log.Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.Any("error", decodeErr))
	case errors.Is(err, ErrMiss):
	default:
		var zero T
		return zero, fmt.Errorf("reading cache key %s: %w", key, err)
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// Get decodes the value at key. The boolean is false on a miss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var value T
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decoding cache key %s: %w", key, err)
	}
	return value, true, nil
}

func encode(key string, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", ErrSerialization, key, err)
	}
	return raw, nil
}

// Set overwrites key with value.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := encode(key, value)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

// SetIfAbsent writes value only when key does not exist and reports whether
// it wrote.
func (c *Cache) SetIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	raw, err := encode(key, value)
	if err != nil {
		return false, err
	}
	written, err := c.store.SetNX(ctx, key, raw, ttl)
	if err != nil {
		return false, fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return written, nil
}

// Invalidate removes keys. Each key is deleted independently; missing keys
// are not an error.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("invalidating cache key %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// GetByPattern lists the keys matching pattern with their raw JSON values.
// Intended for inspection, not hot paths.
func (c *Cache) GetByPattern(ctx context.Context, pattern string) ([]Entry, error) {
	keys, err := c.store.Keys(ctx, pattern)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, err := c.store.Get(ctx, key)
		switch {
		case errors.Is(err, ErrMiss):
			entries = append(entries, Entry{Key: key})
		case err != nil:
			return nil, fmt.Errorf("reading cache key %s: %w", key, err)
		default:
			entry := Entry{Key: key, Found: true}
			if json.Valid(raw) {
				entry.Value = raw
			} else {
				// Delay markers and other raw payloads are shown as strings.
				entry.Value, _ = json.Marshal(string(raw))
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
