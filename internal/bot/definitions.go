package bot

import "github.com/bwmarrin/discordgo"

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        OptUser,
		Description: description,
	}
}

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    &minID,
	}
}

func nameOrIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptNameOrID,
		Description: "Pokemon's name or id",
		Required:    true,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

var minID = 1.0

// Definitions lists the slash commands registered with Discord. The table
// is explicit; Commands.Execute serves exactly these paths.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "pc",
			Description: "PC commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "storage",
					Description: "Storage commands",
					Options: []*discordgo.ApplicationCommandOption{
						subcommand("view", "View a user's PC or one of its pokemons",
							userOption("User to view"),
							intOption(OptPage, "Page number", false),
							intOption(OptPokemonID, "ID of the Pokemon to view", false)),
						subcommand("add", "Add a pokemon to a user's PC",
							nameOrIDOption(),
							userOption("User to add the pokemon to")),
						subcommand("remove", "Remove a pokemon from a user's PC",
							intOption(OptPokemonID, "Pokemon's PC id", true),
							userOption("User to remove the pokemon from")),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "inventory",
					Description: "Inventory commands",
					Options: []*discordgo.ApplicationCommandOption{
						subcommand("view", "View an inventory",
							userOption("User to view the inventory of")),
						subcommand("add", "Add a pokemon to an inventory",
							intOption(OptStoredPokemonID, "Stored ID of the Pokemon to add to the inventory", true),
							userOption("User to add the pokemon to")),
						subcommand("remove", "Remove a pokemon from an inventory",
							intOption(OptHeldPokemonID, "Held ID of the Pokemon to remove from the inventory", true),
							userOption("User to remove the pokemon from")),
					},
				},
			},
		},
		{
			Name:        "pokedex",
			Description: "Pokedex commands",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("pokemon", "Get a pokemon's details", nameOrIDOption()),
			},
		},
	}
}

// commandPaths walks the definitions and returns every executable path.
func commandPaths(defs []*discordgo.ApplicationCommand) []string {
	var paths []string
	var walk func(prefix string, opts []*discordgo.ApplicationCommandOption)
	walk = func(prefix string, opts []*discordgo.ApplicationCommandOption) {
		leaf := true
		for _, o := range opts {
			switch o.Type {
			case discordgo.ApplicationCommandOptionSubCommandGroup, discordgo.ApplicationCommandOptionSubCommand:
				leaf = false
				walk(prefix+" "+o.Name, o.Options)
			}
		}
		if leaf {
			paths = append(paths, prefix)
		}
	}
	for _, d := range defs {
		walk(d.Name, d.Options)
	}
	return paths
}
