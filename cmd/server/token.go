package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/pokepc/internal/service/auth"
)

func newAdminTokenCmd(opts *globalOptions) *cobra.Command {
	var (
		subject  string
		lifetime time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.environment()
			if err != nil {
				return err
			}
			if lifetime <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			tokens, err := auth.NewTokenService(env.AdminTokenSecret)
			if err != nil {
				return fmt.Errorf("ADMIN_TOKEN_SECRET: %w", err)
			}
			token, err := tokens.Generate(cmd.Context(), subject, lifetime)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject recorded in logs")
	cmd.Flags().DurationVar(&lifetime, "ttl", time.Hour, "token lifetime")
	return cmd
}
