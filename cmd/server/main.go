// Package main is the pokepc command: it runs the Discord bot and its admin
// HTTP server, and provides maintenance subcommands for migrations, cache
// inspection, configuration checks, and admin tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
