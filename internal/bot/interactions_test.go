package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseInvocation(t *testing.T) {
	i := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{
			Nick:        "Ash K.",
			User:        &discordgo.User{ID: "100", Username: "ash"},
			Permissions: discordgo.PermissionAdministrator,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "pc",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Type: discordgo.ApplicationCommandOptionSubCommandGroup,
				Name: "storage",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{{
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Name: "view",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: OptPage, Value: float64(2)},
						{Type: discordgo.ApplicationCommandOptionUser, Name: OptUser, Value: "200"},
					},
				}},
			}},
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users: map[string]*discordgo.User{"200": {ID: "200", Username: "misty", GlobalName: "Misty"}},
			},
		},
	}

	inv := parseInvocation(i)
	assert.Equal(t, CmdStorageView, inv.Path)
	assert.Equal(t, User{ID: "100", Name: "Ash K."}, inv.Caller)
	assert.Equal(t, User{ID: "200", Name: "Misty"}, inv.Target)
	assert.True(t, inv.Admin)
	page, ok := inv.Int(OptPage)
	assert.True(t, ok)
	assert.Equal(t, int64(2), page)
}

func TestParseInvocation_DirectMessage(t *testing.T) {
	i := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "100", Username: "ash"},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "pokedex",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Name: "pokemon",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: OptNameOrID, Value: "pikachu"},
				},
			}},
		},
	}

	inv := parseInvocation(i)
	assert.Equal(t, CmdPokedexPokemon, inv.Path)
	assert.Equal(t, User{ID: "100", Name: "ash"}, inv.Caller)
	assert.Equal(t, inv.Caller, inv.Target)
	assert.False(t, inv.Admin)
	name, _ := inv.String(OptNameOrID)
	assert.Equal(t, "pikachu", name)
}

func TestDisplayName(t *testing.T) {
	u := &discordgo.User{Username: "ash", GlobalName: "Ash"}
	assert.Equal(t, "Nick", displayName(u, &discordgo.Member{Nick: "Nick"}))
	assert.Equal(t, "Ash", displayName(u, nil))
	assert.Equal(t, "ash", displayName(&discordgo.User{Username: "ash"}, &discordgo.Member{}))
	assert.Equal(t, "", displayName(nil, nil))
}
