package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/store"
)

// TransferOutcome is the result of moving a creature between a user's PC
// and inventory.
type TransferOutcome int

const (
	// Transferred means the creature moved.
	Transferred TransferOutcome = iota
	// TransferNotFound means the user has no such creature at the source.
	TransferNotFound
	// TransferInventoryFull means the inventory has no free slot.
	TransferInventoryFull
)

func (o TransferOutcome) String() string {
	switch o {
	case Transferred:
		return "transferred"
	case TransferNotFound:
		return "not_found"
	case TransferInventoryFull:
		return "inventory_full"
	default:
		return "unknown"
	}
}

// InventoryService manages the creatures users hold.
type InventoryService struct {
	creatures store.CreatureStore
	cache     *cache.Cache
	size      int
	logger    *slog.Logger
}

// NewInventoryService creates an InventoryService holding at most size
// creatures per user.
func NewInventoryService(
	creatures store.CreatureStore,
	c *cache.Cache,
	size int,
	logger *slog.Logger,
) (*InventoryService, error) {
	if creatures == nil {
		return nil, domain.NewValidationError("creatures", "cannot be nil")
	}
	if c == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil")
	}
	if size < 1 {
		return nil, domain.NewValidationError("size", "must be at least 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{
		creatures: creatures,
		cache:     c,
		size:      size,
		logger:    logger.With(slog.String("component", "inventory_service")),
	}, nil
}

// Size is the inventory capacity.
func (s *InventoryService) Size() int {
	return s.size
}

// IsFull reports whether the user holds as many creatures as the inventory
// allows. The answer is cached until a transfer invalidates it.
func (s *InventoryService) IsFull(ctx context.Context, userID string) (bool, error) {
	full, err := cache.GetOrCompute(ctx, s.cache, cache.InventoryFullKey(userID), cache.NoExpiry,
		func(ctx context.Context) (bool, error) {
			n, err := s.creatures.Count(ctx, store.AtLocation(domain.HeldBy(userID)))
			if err != nil {
				return false, err
			}
			return n >= int64(s.size), nil
		})
	if err != nil {
		return false, NewServiceError("inventory", "is_full", "failed to count held creatures", err)
	}
	return full, nil
}

// Held lists the creatures the user holds, by id.
func (s *InventoryService) Held(ctx context.Context, userID string) ([]domain.Creature, error) {
	held, err := s.creatures.Find(ctx, store.AtLocation(domain.HeldBy(userID)), store.Page{Limit: s.size})
	if err != nil {
		return nil, NewServiceError("inventory", "held", "failed to list held creatures", err)
	}
	return held, nil
}

// Add moves a stored creature into the user's inventory.
func (s *InventoryService) Add(ctx context.Context, userID string, creatureID int64) (TransferOutcome, error) {
	full, err := s.IsFull(ctx, userID)
	if err != nil {
		return TransferNotFound, err
	}
	if full {
		return TransferInventoryFull, nil
	}
	return s.transfer(ctx, "add", creatureID, domain.StoredBy(userID), domain.HeldBy(userID))
}

// Remove moves a held creature back to the user's PC.
func (s *InventoryService) Remove(ctx context.Context, userID string, creatureID int64) (TransferOutcome, error) {
	return s.transfer(ctx, "remove", creatureID, domain.HeldBy(userID), domain.StoredBy(userID))
}

func (s *InventoryService) transfer(ctx context.Context, op string, id int64, from, to domain.Location) (TransferOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("creature_id", id),
		slog.String("from", from.String()),
		slog.String("to", to.String()))

	err := s.creatures.Transfer(ctx, id, from, to)
	if errors.Is(err, store.ErrCreatureNotFound) {
		log.Debug("creature not at source location")
		return TransferNotFound, nil
	}
	if err != nil {
		return TransferNotFound, NewServiceError("inventory", op, "failed to transfer creature", err)
	}

	invalidateSummaries(ctx, s.cache, log, from.Owner)
	log.Debug("creature transferred")
	return Transferred, nil
}

// invalidateSummaries drops the cached PC and inventory summaries of user.
// The change they describe is already persisted, so a failure is logged and
// the stale keys are left to be corrected by the next invalidation.
func invalidateSummaries(ctx context.Context, c *cache.Cache, log *slog.Logger, userID string) {
	if err := c.Invalidate(ctx, cache.MaxPageKey(userID), cache.InventoryFullKey(userID)); err != nil {
		log.Warn("failed to invalidate cached summaries",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}
