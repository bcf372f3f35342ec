package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scanio/internal/config"
	"scanio/pkg/serrors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
environment: development
logFile: /tmp/scanio.log
api:
  baseUrl: https://scanner.example
  keyFile: /tmp/key.enc
  timeout: 5s
scan:
  pollInterval: 2s
  pollMaxAttempts: 3
storage:
  historyPath: /tmp/history.db
  settingsPath: /tmp/settings.yaml
  secretPath: /tmp/secret
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "/tmp/scanio.log", cfg.LogFile)
	require.Equal(t, "https://scanner.example", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, 2*time.Second, cfg.Scan.PollInterval)
	require.Equal(t, 3, cfg.Scan.PollMaxAttempts)

	// values absent from the file keep their defaults
	require.Equal(t, time.Minute, cfg.Scan.RateLimitCooldown)
	require.Equal(t, 10, cfg.Scan.MaxRateLimitWaits)
	require.Equal(t, 1, cfg.Scan.SubmitRetries)
	require.Equal(t, 5*time.Second, cfg.Scan.InterRequestDelay)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCANIO_ENVIRONMENT", "development")
	t.Setenv("SCANIO_API_BASE_URL", "https://env.example")
	t.Setenv("SCANIO_API_KEY_FILE", filepath.Join(dir, "key.enc"))
	t.Setenv("SCANIO_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("SCANIO_SETTINGS_PATH", filepath.Join(dir, "settings.yaml"))
	t.Setenv("SCANIO_SECRET_PATH", filepath.Join(dir, "secret"))

	cfg, err := config.Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "https://env.example", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, filepath.Join(dir, "history.db"), cfg.Storage.HistoryPath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  baseUrl: https://file.example
  keyFile: /tmp/key.enc
storage:
  historyPath: /tmp/history.db
  settingsPath: /tmp/settings.yaml
  secretPath: /tmp/secret
`)
	t.Setenv("SCANIO_API_BASE_URL", "https://env.example")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.API.BaseURL)
}

func TestConfig_Credential_OverrideWins(t *testing.T) {
	var cfg config.Config
	cfg.API.Key = "from-env"

	key, err := cfg.Credential()
	require.NoError(t, err)
	require.Equal(t, "from-env", key)
}

func TestConfig_Credential_RoundTripThroughKeystore(t *testing.T) {
	dir := t.TempDir()

	var cfg config.Config
	cfg.API.KeyFile = filepath.Join(dir, "key.enc")
	cfg.Storage.SecretPath = filepath.Join(dir, "secret")

	require.NoError(t, cfg.StoreCredential("01234567-89ab-cdef"))

	key, err := cfg.Credential()
	require.NoError(t, err)
	require.Equal(t, "01234567-89ab-cdef", key)
}

func TestConfig_Credential_MissingStore(t *testing.T) {
	dir := t.TempDir()

	var cfg config.Config
	cfg.API.KeyFile = filepath.Join(dir, "key.enc")
	cfg.Storage.SecretPath = filepath.Join(dir, "secret")

	_, err := cfg.Credential()
	require.ErrorIs(t, err, serrors.ErrNotFound)
}
