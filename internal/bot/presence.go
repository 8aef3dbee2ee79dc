package bot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/phrazzld/pokepc/internal/multiplier"
)

// presenceState is the part of *discordgo.State the PresenceSource reads.
type presenceState interface {
	GuildIDs() []string
	Presence(guildID, userID string) (*discordgo.Presence, error)
}

type sessionState struct {
	state *discordgo.State
}

func (s sessionState) GuildIDs() []string {
	s.state.RLock()
	defer s.state.RUnlock()

	ids := make([]string, 0, len(s.state.Guilds))
	for _, g := range s.state.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

func (s sessionState) Presence(guildID, userID string) (*discordgo.Presence, error) {
	return s.state.Presence(guildID, userID)
}

// PresenceSource reads custom statuses from the gateway state cache.
type PresenceSource struct {
	state presenceState
}

var _ multiplier.StatusSource = (*PresenceSource)(nil)

// NewPresenceSource creates a PresenceSource over the session's state.
// The session needs the guild presences intent and state tracking.
func NewPresenceSource(session *discordgo.Session) *PresenceSource {
	return &PresenceSource{state: sessionState{state: session.State}}
}

// CustomStatus returns the user's custom status in the first guild that
// knows them, or "" when none does.
func (p *PresenceSource) CustomStatus(ctx context.Context, userID string) (string, error) {
	for _, guildID := range p.state.GuildIDs() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		presence, err := p.state.Presence(guildID, userID)
		if errors.Is(err, discordgo.ErrStateNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		return customStatus(presence.Activities), nil
	}
	return "", nil
}

// customStatus extracts the text of the custom status activity.
func customStatus(activities []*discordgo.Activity) string {
	for _, a := range activities {
		if a != nil && a.Type == discordgo.ActivityTypeCustom {
			return a.State
		}
	}
	return ""
}
