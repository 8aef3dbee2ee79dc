package bot

import (
	"context"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/service"
	"github.com/phrazzld/pokepc/internal/species"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Page(ctx context.Context, userID string, n int) (service.PageResult, error) {
	args := m.Called(ctx, userID, n)
	return args.Get(0).(service.PageResult), args.Error(1)
}

func (m *MockStorage) Add(ctx context.Context, userID, nameOrID string) (service.AddResult, error) {
	args := m.Called(ctx, userID, nameOrID)
	return args.Get(0).(service.AddResult), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, userID string, creatureID int64) (bool, error) {
	args := m.Called(ctx, userID, creatureID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) View(ctx context.Context, userID string, creatureID int64) (service.ViewResult, error) {
	args := m.Called(ctx, userID, creatureID)
	return args.Get(0).(service.ViewResult), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) Size() int { return 3 }

func (m *MockInventory) Held(ctx context.Context, userID string) ([]domain.Creature, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Creature), args.Error(1)
}

func (m *MockInventory) Add(ctx context.Context, userID string, creatureID int64) (service.TransferOutcome, error) {
	args := m.Called(ctx, userID, creatureID)
	return args.Get(0).(service.TransferOutcome), args.Error(1)
}

func (m *MockInventory) Remove(ctx context.Context, userID string, creatureID int64) (service.TransferOutcome, error) {
	args := m.Called(ctx, userID, creatureID)
	return args.Get(0).(service.TransferOutcome), args.Error(1)
}

type MockPokedex struct {
	mock.Mock
}

func (m *MockPokedex) Lookup(ctx context.Context, nameOrID string) species.Result {
	return m.Called(ctx, nameOrID).Get(0).(species.Result)
}

func pikachu() domain.SpeciesDetails {
	habitat := "forest"
	return domain.SpeciesDetails{
		ID:          25,
		Name:        "Pikachu",
		Species:     "Pikachu",
		Abilities:   []string{"Static", "Lightning-rod"},
		Color:       "Yellow",
		CaptureRate: 190,
		Habitat:     &habitat,
		Types:       []string{"Electric"},
		EggGroups:   []string{"Ground", "Fairy"},
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
