package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityEvent(t *testing.T) {
	payload := VoicePayload{
		Before: VoiceState{},
		After:  VoiceState{ChannelID: "general"},
	}

	event, err := NewActivityEvent(VoiceStateChanged, "user-1", payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, VoiceStateChanged, event.Type)
	assert.Equal(t, "user-1", event.UserID)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	var decoded VoicePayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewActivityEvent_WithoutPayload(t *testing.T) {
	event, err := NewActivityEvent(MemberJoined, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, event.Payload)

	var decoded MessagePayload
	assert.Error(t, event.UnmarshalPayload(&decoded))
}

func TestNewActivityEvent_Errors(t *testing.T) {
	_, err := NewActivityEvent(MessageCreated, "", MessagePayload{Content: "hi"})
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = NewActivityEvent(MessageCreated, "user-1", func() {})
	assert.Error(t, err)
}

func TestActivityEvent_JSON(t *testing.T) {
	event, err := NewActivityEvent(MessageCreated, "user-1", MessagePayload{Content: "hello"})
	require.NoError(t, err)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"message_created"`)
	assert.Contains(t, string(raw), `"payload":{"content":"hello"}`)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *ActivityEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ActivityEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	var got *ActivityEvent
	handler := HandlerFunc(func(_ context.Context, e *ActivityEvent) error {
		got = e
		return errors.New("handler error")
	})

	event, err := NewActivityEvent(MemberJoined, "user-1", nil)
	require.NoError(t, err)

	assert.EqualError(t, handler.HandleEvent(context.Background(), event), "handler error")
	assert.Same(t, event, got)
}
