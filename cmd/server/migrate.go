package main

import (
	"github.com/spf13/cobra"

	"github.com/phrazzld/pokepc/internal/platform/migrations"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
	}
	for _, sub := range []struct {
		name  string
		short string
	}{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Show which migrations are applied"},
		{"version", "Print the current schema version"},
	} {
		cmd.AddCommand(newMigrationCommand(opts, sub.name, sub.short))
	}
	return cmd
}

func newMigrationCommand(opts *globalOptions, command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			env, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			db, err := openDatabase(ctx, env, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", "error", err)
				}
			}()

			return migrations.Run(ctx, db, env.DBDriver, command, log)
		},
	}
}
