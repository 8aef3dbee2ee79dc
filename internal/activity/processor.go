package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/leveling"
	"github.com/phrazzld/pokepc/internal/platform/logger"
)

var errBattleParticipants = errors.New("battle payload needs both winner and loser")

// Leveler grants experience for activity.
type Leveler interface {
	OnMessage(ctx context.Context, userID string) (bool, error)
	OnVoiceJoin(ctx context.Context, userID string) error
	OnVoiceLeave(ctx context.Context, userID string) (leveling.Report, error)
	OnBattle(ctx context.Context, winnerID, loserID string) error
}

// Multipliers applies multiplier rules triggered by activity.
type Multipliers interface {
	OnMessage(ctx context.Context, userID, content string) (int, error)
	OnMemberJoined(ctx context.Context, userID string) (int, error)
	OnStatus(ctx context.Context, userID, status string) int
	OnBattle(ctx context.Context, userID string, won bool) (int, error)
}

// Processor dispatches ActivityEvents to the leveling and multiplier
// services.
type Processor struct {
	leveling    Leveler
	multipliers Multipliers
	logger      *slog.Logger
}

var _ events.EventHandler = (*Processor)(nil)

// NewProcessor creates a Processor.
func NewProcessor(levels Leveler, multipliers Multipliers, log *slog.Logger) *Processor {
	if levels == nil {
		panic("leveler cannot be nil")
	}
	if multipliers == nil {
		panic("multipliers cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		leveling:    levels,
		multipliers: multipliers,
		logger:      log.With(slog.String("component", "activity_processor")),
	}
}

// HandleEvent implements events.EventHandler. Unknown event types are
// ignored.
func (p *Processor) HandleEvent(ctx context.Context, event *events.ActivityEvent) error {
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
	)
	ctx = logger.WithLogger(ctx, log)

	var err error
	switch event.Type {
	case events.MessageCreated:
		err = p.message(ctx, event)
	case events.MemberJoined:
		_, err = p.multipliers.OnMemberJoined(ctx, event.UserID)
	case events.PresenceUpdated:
		err = p.presence(ctx, event)
	case events.VoiceStateChanged:
		err = p.voice(ctx, log, event)
	case events.BattleFinished:
		err = p.battle(ctx, event)
	default:
		log.Debug("ignoring event with unsupported type")
		return nil
	}
	if err != nil {
		return fmt.Errorf("processing %s event %s: %w", event.Type, event.ID, err)
	}
	return nil
}

// message applies message multipliers before granting experience so the
// triggering message already benefits from them.
func (p *Processor) message(ctx context.Context, event *events.ActivityEvent) error {
	var payload events.MessagePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decoding message payload: %w", err)
	}

	_, multErr := p.multipliers.OnMessage(ctx, event.UserID, payload.Content)
	_, levelErr := p.leveling.OnMessage(ctx, event.UserID)
	return errors.Join(multErr, levelErr)
}

func (p *Processor) presence(ctx context.Context, event *events.ActivityEvent) error {
	var payload events.PresencePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decoding presence payload: %w", err)
	}
	p.multipliers.OnStatus(ctx, event.UserID, payload.Status)
	return nil
}

func (p *Processor) voice(ctx context.Context, log *slog.Logger, event *events.ActivityEvent) error {
	var payload events.VoicePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decoding voice payload: %w", err)
	}

	transition := leveling.ClassifyVoiceTransition(toVoiceState(payload.Before), toVoiceState(payload.After))
	log.Debug("voice state changed", slog.String("transition", transition.String()))

	switch transition {
	case leveling.VoiceJoin:
		return p.leveling.OnVoiceJoin(ctx, event.UserID)
	case leveling.VoiceLeave:
		_, err := p.leveling.OnVoiceLeave(ctx, event.UserID)
		return err
	default:
		return nil
	}
}

func (p *Processor) battle(ctx context.Context, event *events.ActivityEvent) error {
	var payload events.BattlePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decoding battle payload: %w", err)
	}
	if payload.WinnerID == "" || payload.LoserID == "" {
		return errBattleParticipants
	}

	_, winErr := p.multipliers.OnBattle(ctx, payload.WinnerID, true)
	_, loseErr := p.multipliers.OnBattle(ctx, payload.LoserID, false)
	levelErr := p.leveling.OnBattle(ctx, payload.WinnerID, payload.LoserID)
	return errors.Join(winErr, loseErr, levelErr)
}

func toVoiceState(v events.VoiceState) leveling.VoiceState {
	return leveling.VoiceState{ChannelID: v.ChannelID, Muted: v.Muted, Deafened: v.Deafened}
}
