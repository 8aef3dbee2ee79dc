package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/phrazzld/pokepc/internal/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the game configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file against its schema and compile its formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.environment()
			if err != nil {
				return err
			}

			cfg, err := config.Load(env.ConfigPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", env.ConfigPath)
			fmt.Fprintf(out, "inventory size: %d\n", cfg.Inventory.Size)
			fmt.Fprintf(out, "pokemons per page: %d\n", cfg.Storage.PokemonsPerPage)
			fmt.Fprintf(out, "experience per level: %s\n", cfg.Formulas.PerLevel)

			names := make([]string, 0, len(cfg.Leveling.Multipliers))
			for name := range cfg.Leveling.Multipliers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				rule := cfg.Leveling.Multipliers[name]
				fmt.Fprintf(out, "multiplier %s: %s x%g for %s\n", name, rule.Type, rule.Multiplier, rule.Duration())
			}
			return nil
		},
	})
	return cmd
}
