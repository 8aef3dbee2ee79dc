package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/species"
	"github.com/phrazzld/pokepc/internal/store"
)

// SpeciesResolver resolves species details.
type SpeciesResolver interface {
	Resolve(ctx context.Context, nameOrID string) species.Result
	ResolveCreature(ctx context.Context, c domain.Creature) species.Result
}

// Thresholder reports the experience a creature needs to level up.
type Thresholder interface {
	Threshold(c domain.Creature) (int64, error)
}

// Entry is a creature with its resolved species.
type Entry struct {
	Creature domain.Creature
	Species  species.Result
}

// PageResult is one page of a user's PC. Found is false when the requested
// page does not exist.
type PageResult struct {
	Found   bool
	Number  int
	MaxPage int
	Entries []Entry
}

// AddResult is the outcome of adding a new creature to a PC. Creature is set
// when Species.Outcome is species.Found.
type AddResult struct {
	Species  species.Result
	Creature *domain.Creature
}

// ViewResult describes one creature owned by a user. Found is false when the
// user neither holds nor stores it.
type ViewResult struct {
	Found     bool
	Entry     Entry
	Threshold int64
}

// StorageService manages the creatures users keep in their PC.
type StorageService struct {
	creatures store.CreatureStore
	cache     *cache.Cache
	resolver  SpeciesResolver
	levels    Thresholder
	perPage   int
	logger    *slog.Logger
}

// NewStorageService creates a StorageService listing perPage creatures per
// page.
func NewStorageService(
	creatures store.CreatureStore,
	c *cache.Cache,
	resolver SpeciesResolver,
	levels Thresholder,
	perPage int,
	logger *slog.Logger,
) (*StorageService, error) {
	if creatures == nil {
		return nil, domain.NewValidationError("creatures", "cannot be nil")
	}
	if c == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil")
	}
	if resolver == nil {
		return nil, domain.NewValidationError("resolver", "cannot be nil")
	}
	if levels == nil {
		return nil, domain.NewValidationError("levels", "cannot be nil")
	}
	if perPage < 1 {
		return nil, domain.NewValidationError("perPage", "must be at least 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageService{
		creatures: creatures,
		cache:     c,
		resolver:  resolver,
		levels:    levels,
		perPage:   perPage,
		logger:    logger.With(slog.String("component", "storage_service")),
	}, nil
}

// MaxPage is the number of PC pages of the user. It is cached until an
// operation changes the PC.
func (s *StorageService) MaxPage(ctx context.Context, userID string) (int, error) {
	maxPage, err := cache.GetOrCompute(ctx, s.cache, cache.MaxPageKey(userID), cache.NoExpiry,
		func(ctx context.Context) (int, error) {
			n, err := s.creatures.Count(ctx, store.AtLocation(domain.StoredBy(userID)))
			if err != nil {
				return 0, err
			}
			return int((n + int64(s.perPage) - 1) / int64(s.perPage)), nil
		})
	if err != nil {
		return 0, NewServiceError("storage", "max_page", "failed to count stored creatures", err)
	}
	return maxPage, nil
}

// Page lists the n-th page of the user's PC, by creature id. Page 1 of an
// empty PC is found and empty.
func (s *StorageService) Page(ctx context.Context, userID string, n int) (PageResult, error) {
	if n < 1 {
		return PageResult{}, ErrInvalidPage
	}
	maxPage, err := s.MaxPage(ctx, userID)
	if err != nil {
		return PageResult{}, err
	}

	result := PageResult{Number: n, MaxPage: maxPage}
	if n > max(maxPage, 1) {
		return result, nil
	}
	result.Found = true

	stored, err := s.creatures.Find(ctx, store.AtLocation(domain.StoredBy(userID)), store.Page{
		Offset: (n - 1) * s.perPage,
		Limit:  s.perPage,
	})
	if err != nil {
		return PageResult{}, NewServiceError("storage", "page", "failed to list stored creatures", err)
	}

	result.Entries = make([]Entry, 0, len(stored))
	for _, c := range stored {
		result.Entries = append(result.Entries, Entry{Creature: c, Species: s.resolver.ResolveCreature(ctx, c)})
	}
	return result, nil
}

// Add resolves nameOrID and stores a new level 1 creature of that species in
// the user's PC, seeded with the species' base stats.
func (s *StorageService) Add(ctx context.Context, userID, nameOrID string) (AddResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID),
		slog.String("name_or_id", nameOrID))

	resolved := s.resolver.Resolve(ctx, nameOrID)
	if resolved.Outcome != species.Found {
		return AddResult{Species: resolved}, nil
	}

	c, err := domain.NewStoredCreature(userID, resolved.Details)
	if err != nil {
		return AddResult{}, NewServiceError("storage", "add", "invalid creature", err)
	}
	if err := s.creatures.Create(ctx, c); err != nil {
		return AddResult{}, NewServiceError("storage", "add", "failed to create creature", err)
	}

	invalidateSummaries(ctx, s.cache, log, userID)
	log.Info("creature added to PC",
		slog.Int64("creature_id", c.ID),
		slog.Int64("poke_api_id", c.SpeciesID))
	return AddResult{Species: resolved, Creature: c}, nil
}

// Remove releases a stored creature. It reports false when the user does
// not store it.
func (s *StorageService) Remove(ctx context.Context, userID string, creatureID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID),
		slog.Int64("creature_id", creatureID))

	err := s.creatures.Delete(ctx, creatureID, domain.StoredBy(userID))
	if errors.Is(err, store.ErrCreatureNotFound) {
		log.Debug("creature not in PC")
		return false, nil
	}
	if err != nil {
		return false, NewServiceError("storage", "remove", "failed to delete creature", err)
	}

	invalidateSummaries(ctx, s.cache, log, userID)
	log.Info("creature removed from PC")
	return true, nil
}

// View describes a creature the user holds or stores.
func (s *StorageService) View(ctx context.Context, userID string, creatureID int64) (ViewResult, error) {
	c, err := s.creatures.FindOne(ctx, store.CreatureFilter{ID: creatureID, OwnedBy: userID})
	if errors.Is(err, store.ErrCreatureNotFound) {
		return ViewResult{}, nil
	}
	if err != nil {
		return ViewResult{}, NewServiceError("storage", "view", "failed to find creature", err)
	}

	threshold, err := s.levels.Threshold(*c)
	if err != nil {
		return ViewResult{}, NewServiceError("storage", "view", "failed to evaluate level threshold", err)
	}
	return ViewResult{
		Found:     true,
		Entry:     Entry{Creature: *c, Species: s.resolver.ResolveCreature(ctx, *c)},
		Threshold: threshold,
	}, nil
}
