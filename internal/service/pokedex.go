package service

import (
	"context"

	"github.com/phrazzld/pokepc/internal/species"
)

// PokedexService answers species lookups.
type PokedexService struct {
	resolver SpeciesResolver
}

// NewPokedexService creates a PokedexService.
func NewPokedexService(resolver SpeciesResolver) *PokedexService {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	return &PokedexService{resolver: resolver}
}

// Lookup resolves a species by name or id.
func (s *PokedexService) Lookup(ctx context.Context, nameOrID string) species.Result {
	return s.resolver.Resolve(ctx, nameOrID)
}
