package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scanio/internal/config"
	"scanio/pkg/logger"
)

// keyCommand constructs the `key` command group for managing the sealed
// API key store.
func keyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manages the stored urlscan.io API key",
	}

	cmd.AddCommand(keySetCommand(cfg), keyShowCommand(cfg))

	return cmd
}

// keySetCommand seals an API key into the local key store. The key is read
// from the optional argument or, preferably, from stdin so that it stays
// out of the shell history.
func keySetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Seals an API key into the local key store",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			var key string
			if len(args) == 1 {
				key = strings.TrimSpace(args[0])
			} else {
				fmt.Fprint(os.Stderr, "API key: ")

				scanner := bufio.NewScanner(os.Stdin)
				if scanner.Scan() {
					key = strings.TrimSpace(scanner.Text())
				}
			}

			if key == "" {
				logger.Fatal(ctx, "no API key given")
			}

			if err := cfg.StoreCredential(key); err != nil {
				logger.Fatal(ctx, "could not store API key", zap.Error(err))
			}

			logger.Info(ctx, "API key stored", zap.String("file", cfg.API.KeyFile))
		},
	}

	return cmd
}

// keyShowCommand prints the API key the other commands would use, after
// applying the usual environment override.
func keyShowCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Prints the resolved API key",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(getCredential(context.Background(), cfg))
		},
	}

	return cmd
}
