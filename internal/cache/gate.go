package cache

import (
	"context"
	"fmt"
	"time"
)

// Gate is a presence-based rate limiter: a key exists while its delay is
// active. Only existence matters; the stored payload is empty.
type Gate struct {
	store Store
}

// NewGate creates a Gate over store.
func NewGate(store Store) *Gate {
	if store == nil {
		panic("gate store cannot be nil")
	}
	return &Gate{store: store}
}

// SetDelay marks key as active for d. A non-positive d is a no-op.
func (g *Gate) SetDelay(ctx context.Context, key string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := g.store.Set(ctx, key, []byte{}, d); err != nil {
		return fmt.Errorf("setting delay %s: %w", key, err)
	}
	return nil
}

// IsDelayActive reports whether a delay is pending on key.
func (g *Gate) IsDelayActive(ctx context.Context, key string) (bool, error) {
	active, err := g.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("checking delay %s: %w", key, err)
	}
	return active, nil
}

// TryAcquire atomically checks and arms the delay on key. It returns true
// when the caller may proceed, in which case the delay is now active for d.
// Concurrent callers for the same key see exactly one true.
func (g *Gate) TryAcquire(ctx context.Context, key string, d time.Duration) (bool, error) {
	if d <= 0 {
		return true, nil
	}
	acquired, err := g.store.SetNX(ctx, key, []byte{}, d)
	if err != nil {
		return false, fmt.Errorf("acquiring delay %s: %w", key, err)
	}
	return acquired, nil
}
