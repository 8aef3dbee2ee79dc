package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "pokepc",
		Short:         "Discord bot keeping a PC of pokemon for every member",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"path to the game configuration file (overrides CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level: debug, info, warn, or error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(opts),
		newAdminTokenCmd(opts),
	)
	return cmd
}

// environment reads the process environment and applies flag overrides.
func (o *globalOptions) environment() (config.Environment, error) {
	env, err := config.ParseEnvironment()
	if err != nil {
		return config.Environment{}, fmt.Errorf("failed to load environment: %w", err)
	}
	if o.configPath != "" {
		env.ConfigPath = o.configPath
	}
	if o.logLevel != "" {
		env.LogLevel = o.logLevel
	}
	return env, nil
}

// setup loads the environment and installs the process logger writing to
// the command's error stream.
func (o *globalOptions) setup(cmd *cobra.Command) (config.Environment, *slog.Logger, error) {
	env, err := o.environment()
	if err != nil {
		return config.Environment{}, nil, err
	}
	log := logger.SetupWithWriter(env.LogLevel, cmd.ErrOrStderr())
	return env, log, nil
}
