package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// displayName picks the name Discord shows for a user: guild nickname,
// then global display name, then username.
func displayName(u *discordgo.User, m *discordgo.Member) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func interactionCaller(i *discordgo.Interaction) (User, bool) {
	if i.Member != nil && i.Member.User != nil {
		u := i.Member.User
		return User{ID: u.ID, Name: displayName(u, i.Member)}, i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	if i.User != nil {
		return User{ID: i.User.ID, Name: displayName(i.User, nil)}, false
	}
	return User{}, false
}

// parseInvocation flattens an application command interaction into an
// Invocation. The user option is resolved through the interaction's
// resolved data.
func parseInvocation(i *discordgo.Interaction) Invocation {
	data := i.ApplicationCommandData()
	caller, admin := interactionCaller(i)

	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}

	inv := Invocation{
		Path:    strings.Join(path, " "),
		Caller:  caller,
		Target:  caller,
		Admin:   admin,
		Options: make(map[string]any, len(opts)),
	}
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionInteger:
			inv.Options[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionString:
			inv.Options[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionUser:
			id, _ := o.Value.(string)
			inv.Options[o.Name] = id
			inv.Target = resolvedUser(data.Resolved, id)
		default:
			inv.Options[o.Name] = o.Value
		}
	}
	return inv
}

func resolvedUser(r *discordgo.ApplicationCommandInteractionDataResolved, id string) User {
	target := User{ID: id, Name: id}
	if r == nil {
		return target
	}
	u := r.Users[id]
	m := r.Members[id]
	if name := displayName(u, m); name != "" {
		target.Name = name
	}
	return target
}
