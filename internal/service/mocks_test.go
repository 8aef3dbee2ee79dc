package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/species"
)

// MockResolver mocks the SpeciesResolver interface.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, nameOrID string) species.Result {
	args := m.Called(ctx, nameOrID)
	return args.Get(0).(species.Result)
}

func (m *MockResolver) ResolveCreature(ctx context.Context, c domain.Creature) species.Result {
	args := m.Called(ctx, c)
	return args.Get(0).(species.Result)
}

// MockThresholder mocks the Thresholder interface.
type MockThresholder struct {
	mock.Mock
}

func (m *MockThresholder) Threshold(c domain.Creature) (int64, error) {
	args := m.Called(c)
	return args.Get(0).(int64), args.Error(1)
}

func pikachu() domain.SpeciesDetails {
	return domain.SpeciesDetails{
		ID:   25,
		Name: "Pikachu",
		Stats: []domain.BaseStat{
			{Name: "Hp", Stat: 35},
			{Name: "Attack", Stat: 55},
			{Name: "Defense", Stat: 40},
			{Name: "Special-attack", Stat: 50},
			{Name: "Special-defense", Stat: 50},
			{Name: "Speed", Stat: 90},
		},
	}
}

func found(d domain.SpeciesDetails) species.Result {
	return species.Result{Outcome: species.Found, Details: d}
}
