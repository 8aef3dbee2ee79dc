package species

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/pokeapi"
)

// PokeAPISource adapts a PokeAPI client to Source.
type PokeAPISource struct {
	client *pokeapi.Client
}

var _ Source = (*PokeAPISource)(nil)

// NewPokeAPISource wraps client.
func NewPokeAPISource(client *pokeapi.Client) *PokeAPISource {
	return &PokeAPISource{client: client}
}

// Details implements Source, translating a 404 into ErrNotFound.
func (s *PokeAPISource) Details(ctx context.Context, nameOrID string) (domain.SpeciesDetails, error) {
	details, err := s.client.Details(ctx, nameOrID)
	if errors.Is(err, pokeapi.ErrNotFound) {
		return domain.SpeciesDetails{}, fmt.Errorf("%w: %s", ErrNotFound, nameOrID)
	}
	return details, err
}
