package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scanio/internal/config"
	"scanio/internal/menu"
	"scanio/pkg/logger"
)

// historyCommand constructs the `history` subcommand that lists recent
// scans from the local database, newest first. It also carries the `purge`
// subcommand for deleting old records.
func historyCommand(cfg *config.Config) *cobra.Command {
	var limit uint

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Lists recent scans from the local history",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()

			records, err := store.RecentScans(ctx, limit)
			if err != nil {
				logger.Fatal(ctx, "could not read history", zap.Error(err))
			}

			menu.RenderHistory(os.Stdout, records)
		},
	}

	cmd.Flags().UintVarP(&limit, "limit", "n", 20, "Maximum number of records to show, 0 shows everything")

	cmd.AddCommand(purgeCommand(cfg))

	return cmd
}

// purgeCommand constructs the `history purge` subcommand.
func purgeCommand(cfg *config.Config) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Deletes history records older than the given age",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()

			purged, err := store.PurgeOlderThan(ctx, time.Now().UTC().Add(-olderThan))
			if err != nil {
				logger.Fatal(ctx, "could not purge history", zap.Error(err))
			}

			fmt.Printf("Deleted %d record(s).\n", purged)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of records to delete")

	return cmd
}
