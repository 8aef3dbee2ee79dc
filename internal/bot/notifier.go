package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/phrazzld/pokepc/internal/leveling"
)

// directMessenger is the part of *discordgo.Session used to send DMs.
type directMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DMNotifier delivers notifications as direct messages.
type DMNotifier struct {
	session directMessenger
}

var _ leveling.Notifier = (*DMNotifier)(nil)

// NewDMNotifier creates a DMNotifier sending through session.
func NewDMNotifier(session *discordgo.Session) *DMNotifier {
	return newDMNotifier(session)
}

func newDMNotifier(session directMessenger) *DMNotifier {
	if session == nil {
		panic("discord session cannot be nil")
	}
	return &DMNotifier{session: session}
}

// Notify opens (or reuses) the DM channel with userID and posts message.
func (n *DMNotifier) Notify(ctx context.Context, userID, message string) error {
	ch, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("opening DM channel with %s: %w", userID, err)
	}
	if _, err := n.session.ChannelMessageSend(ch.ID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending DM to %s: %w", userID, err)
	}
	return nil
}
