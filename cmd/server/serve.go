package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/pokepc/internal/config"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and serve the admin API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			env, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(env.ConfigPath)
			if err != nil {
				log.Error("failed to load configuration", "path", env.ConfigPath, "error", err)
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log.Info("configuration loaded",
				"path", env.ConfigPath,
				"inventory_size", cfg.Inventory.Size,
				"pokemons_per_page", cfg.Storage.PokemonsPerPage,
				"multiplier_rules", len(cfg.Leveling.Multipliers))

			app, err := newApplication(ctx, env, cfg, log)
			if err != nil {
				log.Error("failed to initialize application", "error", err)
				return err
			}
			return app.Run(ctx)
		},
	}
}
