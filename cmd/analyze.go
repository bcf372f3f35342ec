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

// analyzeCommand constructs the `analyze` subcommand that scans every
// configured URL once, sequentially, and prints the outcome table. It is
// the non-interactive twin of the menu's "Analyze all URLs" action.
func analyzeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyzes all configured URLs once",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			settings := getSettings(ctx, cfg)
			if len(settings.URLs) == 0 {
				logger.Fatal(ctx, "no URLs configured, add some with the interactive menu first")
			}

			key := getCredential(ctx, cfg)

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()

			tracker := urlscan.NewTracker(urlscan.TrackerOptions{})
			workflow := buildAnalyzer(cfg, newClient(cfg, key, settings.UserAgent), tracker, store)

			requests := make([]domain.ScanRequest, 0, len(settings.URLs))
			for _, url := range settings.URLs {
				requests = append(requests, settings.Request(url))
			}

			outcomes, err := workflow.Run(ctx, requests)
			menu.RenderOutcomes(os.Stdout, outcomes)
			if err != nil {
				logger.Fatal(ctx, "batch interrupted", zap.Error(err))
			}
		},
	}

	return cmd
}
