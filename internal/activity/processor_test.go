package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/leveling"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var ctxArg = mock.Anything

func newProcessor(t *testing.T) (*Processor, *MockLeveler, *MockMultipliers) {
	t.Helper()
	levels := &MockLeveler{}
	mults := &MockMultipliers{}
	_, log := logger.NewCapture()
	t.Cleanup(func() {
		levels.AssertExpectations(t)
		mults.AssertExpectations(t)
	})
	return NewProcessor(levels, mults, log), levels, mults
}

func event(t *testing.T, typ events.EventType, user string, payload any) *events.ActivityEvent {
	t.Helper()
	e, err := events.NewActivityEvent(typ, user, payload)
	require.NoError(t, err)
	return e
}

func TestHandleEvent_Message(t *testing.T) {
	p, levels, mults := newProcessor(t)
	mults.On("OnMessage", ctxArg, "u1", "GG well played").Return(1, nil).Once()
	levels.On("OnMessage", ctxArg, "u1").Return(true, nil).Once()

	err := p.HandleEvent(context.Background(),
		event(t, events.MessageCreated, "u1", events.MessagePayload{Content: "GG well played"}))
	assert.NoError(t, err)
}

func TestHandleEvent_MessageErrorsAreJoined(t *testing.T) {
	p, levels, mults := newProcessor(t)
	multErr := errors.New("cache down")
	levelErr := errors.New("db down")
	mults.On("OnMessage", ctxArg, "u1", "hi").Return(0, multErr).Once()
	levels.On("OnMessage", ctxArg, "u1").Return(false, levelErr).Once()

	err := p.HandleEvent(context.Background(),
		event(t, events.MessageCreated, "u1", events.MessagePayload{Content: "hi"}))
	assert.ErrorIs(t, err, multErr)
	assert.ErrorIs(t, err, levelErr)
}

func TestHandleEvent_MemberJoined(t *testing.T) {
	p, _, mults := newProcessor(t)
	mults.On("OnMemberJoined", ctxArg, "u1").Return(1, nil).Once()

	assert.NoError(t, p.HandleEvent(context.Background(), event(t, events.MemberJoined, "u1", nil)))
}

func TestHandleEvent_Presence(t *testing.T) {
	p, _, mults := newProcessor(t)
	mults.On("OnStatus", ctxArg, "u1", "catching them all").Return(1).Once()

	err := p.HandleEvent(context.Background(),
		event(t, events.PresenceUpdated, "u1", events.PresencePayload{Status: "catching them all"}))
	assert.NoError(t, err)
}

func TestHandleEvent_Voice(t *testing.T) {
	active := events.VoiceState{ChannelID: "c1"}
	muted := events.VoiceState{ChannelID: "c1", Muted: true}

	tests := []struct {
		name   string
		before events.VoiceState
		after  events.VoiceState
		setup  func(l *MockLeveler)
	}{
		{
			name:  "connect starts a session",
			after: active,
			setup: func(l *MockLeveler) {
				l.On("OnVoiceJoin", ctxArg, "u1").Return(nil).Once()
			},
		},
		{
			name:   "mute ends a session",
			before: active,
			after:  muted,
			setup: func(l *MockLeveler) {
				l.On("OnVoiceLeave", ctxArg, "u1").Return(leveling.Report{Updated: 1}, nil).Once()
			},
		},
		{
			name:   "switching channels does nothing",
			before: active,
			after:  events.VoiceState{ChannelID: "c2"},
			setup:  func(*MockLeveler) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, levels, _ := newProcessor(t)
			tt.setup(levels)

			err := p.HandleEvent(context.Background(),
				event(t, events.VoiceStateChanged, "u1", events.VoicePayload{Before: tt.before, After: tt.after}))
			assert.NoError(t, err)
		})
	}
}

func TestHandleEvent_Battle(t *testing.T) {
	p, levels, mults := newProcessor(t)
	mults.On("OnBattle", ctxArg, "winner", true).Return(1, nil).Once()
	mults.On("OnBattle", ctxArg, "loser", false).Return(0, nil).Once()
	levels.On("OnBattle", ctxArg, "winner", "loser").Return(nil).Once()

	err := p.HandleEvent(context.Background(),
		event(t, events.BattleFinished, "winner", events.BattlePayload{WinnerID: "winner", LoserID: "loser"}))
	assert.NoError(t, err)
}

func TestHandleEvent_BadPayloads(t *testing.T) {
	p, _, _ := newProcessor(t)

	err := p.HandleEvent(context.Background(),
		event(t, events.BattleFinished, "winner", events.BattlePayload{WinnerID: "winner"}))
	assert.ErrorIs(t, err, errBattleParticipants)

	broken := event(t, events.MessageCreated, "u1", nil)
	broken.Payload = json.RawMessage(`{"content":`)
	assert.Error(t, p.HandleEvent(context.Background(), broken))
}

func TestHandleEvent_UnknownTypeIgnored(t *testing.T) {
	p, _, _ := newProcessor(t)
	assert.NoError(t, p.HandleEvent(context.Background(), event(t, "reaction_added", "u1", nil)))
}

func TestNewProcessor_Panics(t *testing.T) {
	assert.Panics(t, func() { NewProcessor(nil, &MockMultipliers{}, nil) })
	assert.Panics(t, func() { NewProcessor(&MockLeveler{}, nil, nil) })
}
