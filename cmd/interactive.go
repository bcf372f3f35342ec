package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scanio/internal/config"
	"scanio/internal/menu"
	"scanio/pkg/urlscan"
)

// interactiveCommand constructs the `interactive` subcommand: a numbered
// menu session on stdin/stdout that drives the whole tool. SIGINT and
// SIGTERM end the session cleanly.
func interactiveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Starts the interactive menu session",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()

			settings := getSettings(ctx, cfg)
			tracker := urlscan.NewTracker(urlscan.TrackerOptions{})

			menu.New(cfg, settings, store, tracker, menu.Options{}).Run(ctx)
		},
	}

	return cmd
}
