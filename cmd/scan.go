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
	"scanio/pkg/domain"
	"scanio/pkg/logger"
	"scanio/pkg/urlscan"
)

// scanCommand constructs the `scan` subcommand that submits a single URL
// with the configured tags and visibility and waits for its verdict. The
// process exits non-zero when the scan does not finish successfully.
func scanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Submits one URL and waits for its result",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			url, err := domain.NormalizeURL(args[0])
			if err != nil {
				logger.Fatal(ctx, "not a usable URL", zap.Error(err))
			}

			settings := getSettings(ctx, cfg)
			key := getCredential(ctx, cfg)

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()

			tracker := urlscan.NewTracker(urlscan.TrackerOptions{})
			workflow := buildAnalyzer(cfg, newClient(cfg, key, settings.UserAgent), tracker, store)

			outcomes, err := workflow.Run(ctx, []domain.ScanRequest{settings.Request(url)})
			menu.RenderOutcomes(os.Stdout, outcomes)
			if err != nil {
				logger.Fatal(ctx, "scan interrupted", zap.Error(err))
			}

			if len(outcomes) == 1 && outcomes[0].Failed() {
				closeStore()

				_ = logger.Get(ctx).Sync()

				os.Exit(1) //nolint: gocritic
			}
		},
	}

	return cmd
}
