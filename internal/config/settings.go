package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"scanio/pkg/domain"
)

// DefaultUserAgent identifies the tool to the provider when the user has not
// set their own value.
const DefaultUserAgent = "scanio/1.0"

// Settings is the mutable workspace state the interactive menu edits: the
// URL list, the tag set, the submission visibility and the User-Agent sent
// to the provider. It persists as a small yaml file next to the config.
type Settings struct {
	// URLs is the ordered list of targets for batch analysis
	URLs []string `yaml:"urls"`
	// Tags are attached to every submitted scan; kept sorted and deduplicated
	Tags []string `yaml:"tags"`
	// Visibility applies to every submitted scan
	Visibility domain.Visibility `yaml:"visibility"`
	// UserAgent is sent with every provider request
	UserAgent string `yaml:"userAgent"`
}

// DefaultSettings returns the state of a fresh workspace.
func DefaultSettings() *Settings {
	return &Settings{
		Visibility: domain.VisibilityPublic,
		UserAgent:  DefaultUserAgent,
	}
}

// LoadSettings reads the settings file. A missing file yields the defaults,
// so first runs need no setup step.
func LoadSettings(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(b, settings); err != nil {
		return nil, fmt.Errorf("could not parse settings: %w", err)
	}
	if !settings.Visibility.Valid() {
		settings.Visibility = domain.VisibilityPublic
	}
	if settings.UserAgent == "" {
		settings.UserAgent = DefaultUserAgent
	}
	settings.Tags = domain.NormalizeTags(settings.Tags)

	return settings, nil
}

// Save writes the settings file atomically via a temp file in the same
// directory, so a crash mid-write never corrupts the previous state.
func (s *Settings) Save(path string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("could not create temp settings file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not replace settings file: %w", err)
	}

	return nil
}

// AddURL normalizes the given URL and appends it to the list. Adding a URL
// that normalizes to an already-listed one is a no-op.
func (s *Settings) AddURL(raw string) (string, error) {
	normalized, err := domain.NormalizeURL(raw)
	if err != nil {
		return "", fmt.Errorf("could not add URL: %w", err)
	}

	if slices.Contains(s.URLs, normalized) {
		return normalized, nil
	}
	s.URLs = append(s.URLs, normalized)

	return normalized, nil
}

// RemoveURL deletes the 1-based index from the URL list and returns the
// removed entry.
func (s *Settings) RemoveURL(index int) (string, error) {
	if index < 1 || index > len(s.URLs) {
		return "", fmt.Errorf("no URL at position %d", index)
	}

	removed := s.URLs[index-1]
	s.URLs = slices.Delete(s.URLs, index-1, index)

	return removed, nil
}

// AddTags merges the given tags into the set.
func (s *Settings) AddTags(tags ...string) {
	s.Tags = domain.NormalizeTags(append(s.Tags, tags...))
}

// RemoveTag deletes a tag from the set; removing an unknown tag is a no-op.
func (s *Settings) RemoveTag(tag string) bool {
	before := len(s.Tags)
	s.Tags = slices.DeleteFunc(s.Tags, func(t string) bool {
		return t == tag
	})

	return len(s.Tags) != before
}

// SetVisibility validates and applies a new submission visibility.
func (s *Settings) SetVisibility(raw string) error {
	visibility, err := domain.ParseVisibility(raw)
	if err != nil {
		return err //nolint: wrapcheck
	}
	s.Visibility = visibility

	return nil
}

// SetUserAgent applies a new User-Agent; an empty value restores the default.
func (s *Settings) SetUserAgent(userAgent string) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	s.UserAgent = userAgent
}

// Request builds the immutable scan request for one URL using the current
// tag set and visibility.
func (s *Settings) Request(url string) domain.ScanRequest {
	return domain.ScanRequest{
		URL:        url,
		Tags:       slices.Clone(s.Tags),
		Visibility: s.Visibility,
	}
}
