package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the shared cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect PATTERN",
		Short: "Print cache entries whose keys match a glob pattern",
		Example: `  pokepc cache inspect 'pokemon:*'
  pokepc cache inspect 'experience:multiplier:*'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			c, err := openCache(ctx, env, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Store().Close(); err != nil {
					log.Error("error closing cache connection", "error", err)
				}
			}()

			entries, err := c.GetByPattern(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to read cache: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, entry := range entries {
				if err := enc.Encode(entry); err != nil {
					return fmt.Errorf("failed to write entry: %w", err)
				}
			}
			return nil
		},
	})
	return cmd
}
