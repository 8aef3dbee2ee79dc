package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// Intents are the gateway intents the bot subscribes to.
const Intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMembers |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent |
	discordgo.IntentGuildPresences |
	discordgo.IntentGuildVoiceStates

// commandTimeout bounds a slash command from deferral to the final reply.
const commandTimeout = 15 * time.Second

// ErrMissingToken is returned by NewSession without a bot token.
var ErrMissingToken = errors.New("discord bot token is required")

// NewSession creates a gateway session with the bot's intents and state
// tracking enabled. It does not connect.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	s.State.TrackPresences = true
	s.State.TrackVoice = true
	return s, nil
}

// Bot connects the gateway to the event emitter and the command table.
type Bot struct {
	session  *discordgo.Session
	emitter  events.EventEmitter
	commands *Commands
	guildID  string
	logger   *slog.Logger

	removeHandlers []func()
}

// New creates a Bot. guildID scopes command registration; empty registers
// them globally.
func New(session *discordgo.Session, emitter events.EventEmitter, commands *Commands, guildID string, log *slog.Logger) *Bot {
	if session == nil {
		panic("discord session cannot be nil")
	}
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if commands == nil {
		panic("commands cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		session:  session,
		emitter:  emitter,
		commands: commands,
		guildID:  guildID,
		logger:   log.With(slog.String("component", "discord_bot")),
	}
}

// Open registers the gateway handlers, connects and overwrites the slash
// commands.
func (b *Bot) Open(ctx context.Context) error {
	b.removeHandlers = append(b.removeHandlers,
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onGuildMemberAdd),
		b.session.AddHandler(b.onPresenceUpdate),
		b.session.AddHandler(b.onVoiceStateUpdate),
		b.session.AddHandler(b.onInteractionCreate),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}

	appID := b.session.State.User.ID
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Definitions(), discordgo.WithContext(ctx))
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("registering slash commands: %w", err)
	}
	b.logger.Info("discord bot connected",
		slog.String("user", b.session.State.User.Username),
		slog.String("guild_id", b.guildID),
		slog.Int("commands", len(registered)))
	return nil
}

// Close detaches the handlers and disconnects.
func (b *Bot) Close() error {
	for _, remove := range b.removeHandlers {
		remove()
	}
	b.removeHandlers = nil
	return b.session.Close()
}

func (b *Bot) emit(eventType events.EventType, userID string, payload any) {
	log := b.logger.With(slog.String("event_type", string(eventType)), slog.String("user_id", userID))

	event, err := events.NewActivityEvent(eventType, userID, payload)
	if err != nil {
		log.Error("failed to build activity event", slog.Any("error", err))
		return
	}
	if err := b.emitter.EmitEvent(logger.WithLogger(context.Background(), log), event); err != nil {
		log.Warn("activity event dropped", slog.Any("error", err))
	}
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	b.emit(events.MessageCreated, m.Author.ID, events.MessagePayload{Content: m.Content})
}

func (b *Bot) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	b.emit(events.MemberJoined, m.User.ID, nil)
}

func (b *Bot) onPresenceUpdate(_ *discordgo.Session, p *discordgo.PresenceUpdate) {
	if p.User == nil || p.User.Bot {
		return
	}
	b.emit(events.PresenceUpdated, p.User.ID, events.PresencePayload{Status: customStatus(p.Activities)})
}

func voiceState(v *discordgo.VoiceState) events.VoiceState {
	if v == nil {
		return events.VoiceState{}
	}
	return events.VoiceState{ChannelID: v.ChannelID, Muted: v.SelfMute, Deafened: v.SelfDeaf}
}

func (b *Bot) onVoiceStateUpdate(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || v.UserID == "" {
		return
	}
	if v.Member != nil && v.Member.User != nil && v.Member.User.Bot {
		return
	}
	b.emit(events.VoiceStateChanged, v.UserID, events.VoicePayload{
		Before: voiceState(v.BeforeUpdate),
		After:  voiceState(v.VoiceState),
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv := parseInvocation(i.Interaction)
	log := b.logger.With(slog.String("command", inv.Path), slog.String("interaction_id", i.ID))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error("failed to defer interaction response", slog.Any("error", err))
		return
	}

	reply := b.commands.Execute(logger.WithLogger(ctx, log), inv)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &reply}, discordgo.WithContext(ctx)); err != nil {
		log.Error("failed to send interaction response", slog.Any("error", err))
	}
}
