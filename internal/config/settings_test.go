package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"scanio/internal/config"
	"scanio/pkg/domain"
)

func TestLoadSettings_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	settings, err := config.LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	require.Empty(t, settings.URLs)
	require.Empty(t, settings.Tags)
	require.Equal(t, domain.VisibilityPublic, settings.Visibility)
	require.Equal(t, config.DefaultUserAgent, settings.UserAgent)
}

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := config.DefaultSettings()
	_, err := settings.AddURL("https://example.com")
	require.NoError(t, err)
	settings.AddTags("phishing", "campaign-7")
	require.NoError(t, settings.SetVisibility("unlisted"))
	settings.SetUserAgent("research-bot/2.0")
	require.NoError(t, settings.Save(path))

	loaded, err := config.LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, settings.URLs, loaded.URLs)
	require.Equal(t, []string{"campaign-7", "phishing"}, loaded.Tags)
	require.Equal(t, domain.VisibilityUnlisted, loaded.Visibility)
	require.Equal(t, "research-bot/2.0", loaded.UserAgent)
}

func TestLoadSettings_SanitizesHandEditedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := `
urls:
  - https://example.com
tags: [b, a, b, "  "]
visibility: everyone
userAgent: ""
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	settings, err := config.LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, settings.Tags)
	require.Equal(t, domain.VisibilityPublic, settings.Visibility)
	require.Equal(t, config.DefaultUserAgent, settings.UserAgent)
}

func TestSettings_AddURL(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()

	normalized, err := settings.AddURL("Example.COM/path/")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/path", normalized)

	// a different spelling of the same target does not duplicate the entry
	_, err = settings.AddURL("https://example.com/path")
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/path"}, settings.URLs)

	_, err = settings.AddURL("not a url at all %%%")
	require.Error(t, err)
}

func TestSettings_RemoveURL(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()
	for _, u := range []string{"https://a.example", "https://b.example"} {
		_, err := settings.AddURL(u)
		require.NoError(t, err)
	}

	removed, err := settings.RemoveURL(1)
	require.NoError(t, err)
	require.Equal(t, "https://a.example/", removed)
	require.Equal(t, []string{"https://b.example/"}, settings.URLs)

	_, err = settings.RemoveURL(0)
	require.Error(t, err)
	_, err = settings.RemoveURL(2)
	require.Error(t, err)
}

func TestSettings_Tags(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()
	settings.AddTags("b", "a", "b", "")
	require.Equal(t, []string{"a", "b"}, settings.Tags)

	require.True(t, settings.RemoveTag("a"))
	require.False(t, settings.RemoveTag("a"))
	require.Equal(t, []string{"b"}, settings.Tags)
}

func TestSettings_SetVisibility(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()
	require.NoError(t, settings.SetVisibility("Private"))
	require.Equal(t, domain.VisibilityPrivate, settings.Visibility)

	require.Error(t, settings.SetVisibility("everyone"))
	require.Equal(t, domain.VisibilityPrivate, settings.Visibility)
}

func TestSettings_Request(t *testing.T) {
	t.Parallel()

	settings := config.DefaultSettings()
	settings.AddTags("a")
	require.NoError(t, settings.SetVisibility("unlisted"))

	req := settings.Request("https://example.com/")
	require.Equal(t, "https://example.com/", req.URL)
	require.Equal(t, []string{"a"}, req.Tags)
	require.Equal(t, domain.VisibilityUnlisted, req.Visibility)

	// the request owns its tag slice
	req.Tags[0] = "mutated"
	require.Equal(t, []string{"a"}, settings.Tags)
}
