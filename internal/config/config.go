package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"scanio/pkg/keystore"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the scanning API, the
// submit-and-poll workflow, and the local state files. All values can come
// from the yaml config file or from SCANIO_-prefixed environment variables.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"SCANIO_ENVIRONMENT" env-default:"production" yaml:"environment"`

	// LogFile, when set, tees log output to this file in addition to stderr
	LogFile string `env:"SCANIO_LOG_FILE" yaml:"logFile"`

	// API contains everything needed to talk to the scanning provider
	API struct {
		// BaseURL is the root of the scanning API
		BaseURL string `env:"SCANIO_API_BASE_URL" env-default:"https://urlscan.io" yaml:"baseUrl"`
		// Key overrides the sealed key store when set; useful for CI and one-off runs
		Key string `env:"SCANIO_API_KEY" yaml:"key"`
		// KeyFile is the path of the sealed API key store
		KeyFile string `env:"SCANIO_API_KEY_FILE" yaml:"keyFile"`
		// KeyPassphrase unseals the key store; when empty a per-machine secret is used
		KeyPassphrase string `env:"SCANIO_API_KEY_PASSPHRASE" yaml:"keyPassphrase"`
		// Timeout bounds every single HTTP request to the provider
		Timeout time.Duration `env:"SCANIO_API_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"api"`

	// Scan tunes the submit-and-poll workflow
	Scan struct {
		// PollInterval is the sleep before every result poll attempt
		PollInterval time.Duration `env:"SCANIO_SCAN_POLL_INTERVAL" env-default:"10s" yaml:"pollInterval"`
		// PollMaxAttempts is the number of result polls before a job times out
		PollMaxAttempts int `env:"SCANIO_SCAN_POLL_MAX_ATTEMPTS" env-default:"12" yaml:"pollMaxAttempts"`
		// RateLimitCooldown is the wait after a 429 before trying again
		RateLimitCooldown time.Duration `env:"SCANIO_SCAN_RATE_LIMIT_COOLDOWN" env-default:"1m" yaml:"rateLimitCooldown"`
		// MaxRateLimitWaits bounds consecutive 429 cooldowns within one poll
		MaxRateLimitWaits int `env:"SCANIO_SCAN_MAX_RATE_LIMIT_WAITS" env-default:"10" yaml:"maxRateLimitWaits"`
		// SubmitRetries is how many times a rate-limited submission is retried
		SubmitRetries int `env:"SCANIO_SCAN_SUBMIT_RETRIES" env-default:"1" yaml:"submitRetries"`
		// InterRequestDelay is the pause between two finished jobs in a batch
		InterRequestDelay time.Duration `env:"SCANIO_SCAN_INTER_REQUEST_DELAY" env-default:"5s" yaml:"interRequestDelay"`
	} `yaml:"scan"`

	// Storage locates the local state files
	Storage struct {
		// HistoryPath is the sqlite database holding finished scans
		HistoryPath string `env:"SCANIO_HISTORY_PATH" yaml:"historyPath"`
		// SettingsPath is the yaml file holding urls, tags, visibility and user agent
		SettingsPath string `env:"SCANIO_SETTINGS_PATH" yaml:"settingsPath"`
		// SecretPath is the generated machine secret used when no passphrase is configured
		SecretPath string `env:"SCANIO_SECRET_PATH" yaml:"secretPath"`
	} `yaml:"storage"`
}

// Load receives the path for the yaml config file and returns a filled
// Config struct. A missing config file is not an error: values then come
// from the environment and defaults only. A .env file in the working
// directory is loaded first, best effort.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	} else if errors.Is(err, fs.ErrNotExist) || configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("could not stat config %s: %w", configPath, err)
	}

	if err := cfg.applyDefaultPaths(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultDir returns the per-user directory scanio keeps its state in.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve user config dir: %w", err)
	}

	return filepath.Join(base, "scanio"), nil
}

// DefaultConfigPath returns the config file location used when -c is not given.
func DefaultConfigPath() string {
	dir, err := DefaultDir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(dir, "config.yaml")
}

func (c *Config) applyDefaultPaths() error {
	if c.Storage.HistoryPath != "" && c.Storage.SettingsPath != "" &&
		c.Storage.SecretPath != "" && c.API.KeyFile != "" {
		return nil
	}

	dir, err := DefaultDir()
	if err != nil {
		return err
	}

	if c.Storage.HistoryPath == "" {
		c.Storage.HistoryPath = filepath.Join(dir, "history.db")
	}
	if c.Storage.SettingsPath == "" {
		c.Storage.SettingsPath = filepath.Join(dir, "settings.yaml")
	}
	if c.Storage.SecretPath == "" {
		c.Storage.SecretPath = filepath.Join(dir, "secret")
	}
	if c.API.KeyFile == "" {
		c.API.KeyFile = filepath.Join(dir, "key.enc")
	}

	return nil
}

// Credential resolves the API key: the configured override wins, otherwise
// the sealed key store is opened. A missing store surfaces as
// serrors.ErrNotFound so callers can tell "not configured" from "broken".
func (c *Config) Credential() (string, error) {
	if c.API.Key != "" {
		return c.API.Key, nil
	}

	passphrase, err := c.keyPassphrase()
	if err != nil {
		return "", err
	}

	key, err := keystore.Load(c.API.KeyFile, passphrase)
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return key, nil
}

// StoreCredential seals the API key into the configured key file.
func (c *Config) StoreCredential(apiKey string) error {
	passphrase, err := c.keyPassphrase()
	if err != nil {
		return err
	}

	if err := keystore.Save(c.API.KeyFile, passphrase, apiKey); err != nil {
		return fmt.Errorf("could not store API key: %w", err)
	}

	return nil
}

func (c *Config) keyPassphrase() (string, error) {
	if c.API.KeyPassphrase != "" {
		return c.API.KeyPassphrase, nil
	}

	secret, err := keystore.EnsureSecret(c.Storage.SecretPath)
	if err != nil {
		return "", fmt.Errorf("could not load machine secret: %w", err)
	}

	return secret, nil
}
