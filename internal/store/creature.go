package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/phrazzld/pokepc/internal/domain"
)

// CreatureFilter selects creatures. Zero-valued fields are ignored, so the
// zero filter matches every creature.
type CreatureFilter struct {
	ID       int64
	HeldBy   string
	StoredBy string
	// OwnedBy matches creatures held or stored by the user.
	OwnedBy string
}

// AtLocation is the filter matching creatures at loc.
func AtLocation(loc domain.Location) CreatureFilter {
	if loc.Kind == domain.Held {
		return CreatureFilter{HeldBy: loc.Owner}
	}
	return CreatureFilter{StoredBy: loc.Owner}
}

// Where renders the filter as a SQL WHERE clause using placeholder to number
// arguments starting at 1. It returns an empty clause for the zero filter.
func (f CreatureFilter) Where(placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if f.ID != 0 {
		conds = append(conds, "id = "+next(f.ID))
	}
	if f.HeldBy != "" {
		conds = append(conds, "held_by = "+next(f.HeldBy))
	}
	if f.StoredBy != "" {
		conds = append(conds, "stored_by = "+next(f.StoredBy))
	}
	if f.OwnedBy != "" {
		conds = append(conds, "(held_by = "+next(f.OwnedBy)+" OR stored_by = "+next(f.OwnedBy)+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Page bounds a listing. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// CreatureStore defines the interface for creature persistence.
type CreatureStore interface {
	// Create inserts c and sets its ID.
	// Returns validation errors if the creature is invalid.
	Create(ctx context.Context, c *domain.Creature) error

	// GetByID retrieves a creature by id.
	// Returns ErrCreatureNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Creature, error)

	// FindOne returns the first creature matching filter, by id.
	// Returns ErrCreatureNotFound when nothing matches.
	FindOne(ctx context.Context, filter CreatureFilter) (*domain.Creature, error)

	// Find lists matching creatures ordered by id ascending.
	Find(ctx context.Context, filter CreatureFilter, page Page) ([]domain.Creature, error)

	// Count returns the number of matching creatures.
	Count(ctx context.Context, filter CreatureFilter) (int64, error)

	// UpdateProgress persists level, experience and stats of c.
	// Returns ErrCreatureNotFound if it no longer exists.
	UpdateProgress(ctx context.Context, c *domain.Creature) error

	// Transfer moves creature id from one location to another in a single
	// conditional update. Returns ErrCreatureNotFound when the creature is
	// not at from, which includes a concurrent transfer having won.
	Transfer(ctx context.Context, id int64, from, to domain.Location) error

	// Delete removes creature id if it is at loc.
	// Returns ErrCreatureNotFound otherwise.
	Delete(ctx context.Context, id int64, loc domain.Location) error

	// WithTx returns a store that runs its statements in tx.
	WithTx(tx *sql.Tx) CreatureStore
}
