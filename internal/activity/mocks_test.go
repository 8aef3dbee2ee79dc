package activity

import (
	"context"

	"github.com/phrazzld/pokepc/internal/leveling"
	"github.com/stretchr/testify/mock"
)

type MockLeveler struct {
	mock.Mock
}

func (m *MockLeveler) OnMessage(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeveler) OnVoiceJoin(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockLeveler) OnVoiceLeave(ctx context.Context, userID string) (leveling.Report, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(leveling.Report), args.Error(1)
}

func (m *MockLeveler) OnBattle(ctx context.Context, winnerID, loserID string) error {
	return m.Called(ctx, winnerID, loserID).Error(0)
}

type MockMultipliers struct {
	mock.Mock
}

func (m *MockMultipliers) OnMessage(ctx context.Context, userID, content string) (int, error) {
	args := m.Called(ctx, userID, content)
	return args.Int(0), args.Error(1)
}

func (m *MockMultipliers) OnMemberJoined(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockMultipliers) OnStatus(ctx context.Context, userID, status string) int {
	return m.Called(ctx, userID, status).Int(0)
}

func (m *MockMultipliers) OnBattle(ctx context.Context, userID string, won bool) (int, error) {
	args := m.Called(ctx, userID, won)
	return args.Int(0), args.Error(1)
}
