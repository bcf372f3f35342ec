package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scanio/internal/config"
	"scanio/internal/menu"
	"scanio/pkg/logger"
)

// quotasCommand constructs the `quotas` subcommand that fetches the
// account's per-action quota windows and prints them as a table.
func quotasCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotas",
		Short: "Shows the account's scanning quotas",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			settings := getSettings(ctx, cfg)
			key := getCredential(ctx, cfg)

			quotas, _, err := newClient(cfg, key, settings.UserAgent).Quotas(ctx)
			if err != nil {
				logger.Fatal(ctx, "could not fetch quotas", zap.Error(err))
			}

			menu.RenderQuotas(os.Stdout, quotas)
		},
	}

	return cmd
}
