package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scanio/internal/analyzer"
	"scanio/internal/config"
	"scanio/pkg/history"
	"scanio/pkg/history/sqlite"
	"scanio/pkg/logger"
	"scanio/pkg/serrors"
	"scanio/pkg/urlscan"
	"scanio/pkg/urlscan/urlscanio"
)

// getStore opens the local history database, applying any pending
// migrations, and returns it together with a cleanup function.
func getStore(ctx context.Context, cfg *config.Config) (history.Store, func()) {
	store, err := sqlite.New(ctx, sqlite.Options{Path: cfg.Storage.HistoryPath})
	if err != nil {
		logger.Fatal(ctx, "could not open history database", zap.Error(err))
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn(ctx, "could not close history database", zap.Error(err))
		}
	}
}

// getSettings loads the mutable workspace settings (URLs, tags, visibility,
// user agent) from disk, falling back to defaults when the file is missing.
func getSettings(ctx context.Context, cfg *config.Config) *config.Settings {
	settings, err := config.LoadSettings(cfg.Storage.SettingsPath)
	if err != nil {
		logger.Fatal(ctx, "could not load settings", zap.Error(err))
	}

	return settings
}

// getCredential resolves the API key from the environment override or the
// sealed key store and exits with guidance when neither is configured.
func getCredential(ctx context.Context, cfg *config.Config) string {
	key, err := cfg.Credential()
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			logger.Fatal(ctx, `no API key configured, run "scanio key set" or set SCANIO_API_KEY`)
		}

		logger.Fatal(ctx, "could not resolve API key", zap.Error(err))
	}

	return key
}

// newClient builds the urlscan.io API client shared by all workflow
// commands.
func newClient(cfg *config.Config, key, userAgent string) urlscan.Client {
	return urlscanio.New(&http.Client{Timeout: cfg.API.Timeout}, urlscanio.Options{
		BaseURL:   cfg.API.BaseURL,
		Key:       key,
		UserAgent: userAgent,
	})
}

// buildAnalyzer assembles the full submit-and-poll workflow on top of the
// given client, rate-limit tracker and history store.
func buildAnalyzer(cfg *config.Config, client urlscan.Client, tracker *urlscan.Tracker, store history.Store) *analyzer.Analyzer {
	submitter := urlscan.NewSubmitter(client, tracker, urlscan.SubmitterOptions{
		Cooldown:   cfg.Scan.RateLimitCooldown,
		MaxRetries: cfg.Scan.SubmitRetries,
	})
	poller := urlscan.NewPoller(client, tracker, urlscan.PollerOptions{
		Interval:          cfg.Scan.PollInterval,
		MaxAttempts:       cfg.Scan.PollMaxAttempts,
		Cooldown:          cfg.Scan.RateLimitCooldown,
		MaxRateLimitWaits: cfg.Scan.MaxRateLimitWaits,
	})

	return analyzer.New(submitter, poller, store, analyzer.Options{
		InterRequestDelay: cfg.Scan.InterRequestDelay,
	})
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "scanio",
		Short: "Submits URLs to urlscan.io and keeps a local scan history",
	}

	// Since cobra doesn't parse the flags before running the command and we need the config path before
	// starting the command, here we are also using the `flag` package to parse the flags. `PersistentFlags` is
	// only used for generating help.
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath(), "Config File Path")

	configPath := flag.String("c", config.DefaultConfigPath(), "The config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment, cfg.LogFile)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))

			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	interactive := interactiveCommand(cfg)
	rootCmd.AddCommand(interactive,
		analyzeCommand(cfg),
		scanCommand(cfg),
		quotasCommand(cfg),
		historyCommand(cfg),
		keyCommand(cfg),
		migrateCommand(cfg))

	// running scanio without a subcommand opens the interactive menu
	rootCmd.Run = interactive.Run

	err = rootCmd.Execute()

	_ = logger.Get(ctx).Sync()

	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
