package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names the kind of user activity an event describes.
type EventType string

// Activity event types.
const (
	MessageCreated    EventType = "message_created"
	MemberJoined      EventType = "member_joined"
	PresenceUpdated   EventType = "presence_updated"
	VoiceStateChanged EventType = "voice_state_changed"
	BattleFinished    EventType = "battle_finished"
)

// ErrMissingUser is returned when an event is created without a user id.
var ErrMissingUser = errors.New("activity event requires a user id")

// ActivityEvent is something a user did that may earn experience or a
// multiplier. All events of one user are processed in the order emitted.
type ActivityEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type selects the payload shape
	Type EventType `json:"type"`

	// UserID is the Discord user the event belongs to
	UserID string `json:"user_id"`

	// OccurredAt is when the gateway reported the activity
	OccurredAt time.Time `json:"occurred_at"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessagePayload accompanies MessageCreated.
type MessagePayload struct {
	Content string `json:"content"`
}

// PresencePayload accompanies PresenceUpdated. Status is the custom status
// text, empty when the user has none.
type PresencePayload struct {
	Status string `json:"status"`
}

// VoiceState is the part of a Discord voice state that matters for voice
// experience. An empty ChannelID means disconnected.
type VoiceState struct {
	ChannelID string `json:"channel_id,omitempty"`
	Muted     bool   `json:"muted,omitempty"`
	Deafened  bool   `json:"deafened,omitempty"`
}

// VoicePayload accompanies VoiceStateChanged.
type VoicePayload struct {
	Before VoiceState `json:"before"`
	After  VoiceState `json:"after"`
}

// BattlePayload accompanies BattleFinished. The event's UserID is the winner.
type BattlePayload struct {
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ActivityEvent) UnmarshalPayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s (%s) has no payload", e.ID, e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}

// NewActivityEvent creates an ActivityEvent for userID. A nil payload
// produces an event without one.
func NewActivityEvent(eventType EventType, userID string, payload any) (*ActivityEvent, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", eventType, err)
		}
		payloadBytes = b
	}

	return &ActivityEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now(),
		Payload:    payloadBytes,
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ActivityEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ActivityEvent) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ActivityEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the gateway adapter to publish events without direct knowledge
// of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ActivityEvent) error
}
