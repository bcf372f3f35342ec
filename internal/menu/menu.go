// Package menu implements the interactive terminal session: a numbered
// option list over stdin driving the scan workflow, the workspace settings,
// the key store, quotas and history. All terminal output goes through an
// injected io.Writer so the session is fully scriptable in tests; log
// output stays on stderr and never mixes into the prompt.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"scanio/internal/analyzer"
	"scanio/internal/config"
	"scanio/pkg/domain"
	"scanio/pkg/history"
	"scanio/pkg/serrors"
	"scanio/pkg/urlscan"
	"scanio/pkg/urlscan/urlscanio"
)

const historyPageSize = 20

// ClientFactory builds a provider client for the given credential and user
// agent. The menu rebuilds the client per action so key and user-agent
// changes take effect immediately.
type ClientFactory func(key, userAgent string) urlscan.Client

// Options configures an interactive session.
type Options struct {
	// In is the command input stream; defaults to stdin.
	In io.Reader
	// Out is where prompts and tables are written; defaults to stdout.
	Out io.Writer
	// NewClient, when set, replaces the default urlscan.io client factory.
	NewClient ClientFactory
}

// Menu is one interactive session. The tracker is shared across every
// action so rate-limit knowledge survives between runs.
type Menu struct {
	config    *config.Config
	settings  *config.Settings
	store     history.Store
	tracker   *urlscan.Tracker
	in        *bufio.Scanner
	out       io.Writer
	newClient ClientFactory
}

// Run drives the session until the user quits, input ends or the context is
// interrupted.
func (m *Menu) Run(ctx context.Context) {
	fmt.Fprintln(m.out, "Interactive urlscan.io session.")
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(m.out, "Session interrupted.")

			return
		}

		fmt.Fprintln(m.out)
		RenderMenu(m.out)
		choice, ok := m.prompt("> ")
		if !ok {
			return
		}

		switch choice {
		case "1":
			m.runBatch(ctx)
		case "2":
			m.scanSingle(ctx)
		case "3":
			RenderSettings(m.out, m.settings)
		case "4":
			m.addURL()
		case "5":
			m.removeURL()
		case "6":
			m.addTags()
		case "7":
			m.removeTag()
		case "8":
			m.setVisibility()
		case "9":
			m.setUserAgent()
		case "10":
			m.storeKey()
		case "11":
			m.showQuotas(ctx)
		case "12":
			m.showHistory(ctx)
		case "q", "quit", "exit", "0":
			fmt.Fprintln(m.out, "Bye.")

			return
		case "":
		default:
			fmt.Fprintf(m.out, "Unknown option %q.\n", choice)
		}
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}

	return strings.TrimSpace(m.in.Text()), true
}

// credential resolves the API key, guiding the user when none is stored.
// Detecting the absence here, before any job starts, is what aborts a batch
// as a whole instead of failing URL by URL.
func (m *Menu) credential() (string, bool) {
	key, err := m.config.Credential()
	if err == nil {
		return key, true
	}

	if errors.Is(err, serrors.ErrNotFound) {
		fmt.Fprintln(m.out, `No API key configured. Use "Store API key" or set SCANIO_API_KEY.`)
	} else {
		fmt.Fprintf(m.out, "Could not resolve the API key: %v\n", err)
	}

	return "", false
}

func (m *Menu) buildAnalyzer(key string) *analyzer.Analyzer {
	client := m.newClient(key, m.settings.UserAgent)
	submitter := urlscan.NewSubmitter(client, m.tracker, urlscan.SubmitterOptions{
		Cooldown:   m.config.Scan.RateLimitCooldown,
		MaxRetries: m.config.Scan.SubmitRetries,
	})
	poller := urlscan.NewPoller(client, m.tracker, urlscan.PollerOptions{
		Interval:          m.config.Scan.PollInterval,
		MaxAttempts:       m.config.Scan.PollMaxAttempts,
		Cooldown:          m.config.Scan.RateLimitCooldown,
		MaxRateLimitWaits: m.config.Scan.MaxRateLimitWaits,
	})

	return analyzer.New(submitter, poller, m.store, analyzer.Options{
		InterRequestDelay: m.config.Scan.InterRequestDelay,
	})
}

func (m *Menu) analyze(ctx context.Context, a *analyzer.Analyzer, requests []domain.ScanRequest) {
	fmt.Fprintf(m.out, "Analyzing %d URL(s), this can take a while...\n", len(requests))
	outcomes, err := a.Run(ctx, requests)
	RenderOutcomes(m.out, outcomes)
	if err != nil {
		fmt.Fprintf(m.out, "Batch stopped early: %v\n", err)
	}
}

func (m *Menu) runBatch(ctx context.Context) {
	if len(m.settings.URLs) == 0 {
		fmt.Fprintln(m.out, "No URLs configured; add some first.")

		return
	}

	key, ok := m.credential()
	if !ok {
		return
	}

	requests := make([]domain.ScanRequest, 0, len(m.settings.URLs))
	for _, url := range m.settings.URLs {
		requests = append(requests, m.settings.Request(url))
	}

	m.analyze(ctx, m.buildAnalyzer(key), requests)
}

func (m *Menu) scanSingle(ctx context.Context) {
	raw, ok := m.prompt("URL to scan: ")
	if !ok || raw == "" {
		return
	}

	url, err := domain.NormalizeURL(raw)
	if err != nil {
		fmt.Fprintf(m.out, "Not a usable URL: %v\n", err)

		return
	}

	key, ok := m.credential()
	if !ok {
		return
	}

	m.analyze(ctx, m.buildAnalyzer(key), []domain.ScanRequest{m.settings.Request(url)})
}

func (m *Menu) addURL() {
	raw, ok := m.prompt("URL to add: ")
	if !ok || raw == "" {
		return
	}

	normalized, err := m.settings.AddURL(raw)
	if err != nil {
		fmt.Fprintf(m.out, "Not a usable URL: %v\n", err)

		return
	}

	m.saveSettings()
	fmt.Fprintf(m.out, "Added %s.\n", normalized)
}

func (m *Menu) removeURL() {
	if len(m.settings.URLs) == 0 {
		fmt.Fprintln(m.out, "No URLs configured.")

		return
	}

	RenderSettings(m.out, m.settings)
	raw, ok := m.prompt("Position to remove: ")
	if !ok || raw == "" {
		return
	}

	index, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(m.out, "Not a position: %q.\n", raw)

		return
	}

	removed, err := m.settings.RemoveURL(index)
	if err != nil {
		fmt.Fprintln(m.out, err.Error())

		return
	}

	m.saveSettings()
	fmt.Fprintf(m.out, "Removed %s.\n", removed)
}

func (m *Menu) addTags() {
	raw, ok := m.prompt("Tags to add (space separated): ")
	if !ok || raw == "" {
		return
	}

	m.settings.AddTags(strings.Fields(raw)...)
	m.saveSettings()
	fmt.Fprintf(m.out, "Tags: %s.\n", strings.Join(m.settings.Tags, ", "))
}

func (m *Menu) removeTag() {
	tag, ok := m.prompt("Tag to remove: ")
	if !ok || tag == "" {
		return
	}

	if !m.settings.RemoveTag(tag) {
		fmt.Fprintf(m.out, "No tag %q.\n", tag)

		return
	}

	m.saveSettings()
	fmt.Fprintf(m.out, "Tags: %s.\n", strings.Join(m.settings.Tags, ", "))
}

func (m *Menu) setVisibility() {
	raw, ok := m.prompt("Visibility (public/unlisted/private): ")
	if !ok || raw == "" {
		return
	}

	if err := m.settings.SetVisibility(raw); err != nil {
		fmt.Fprintln(m.out, err.Error())

		return
	}

	m.saveSettings()
	fmt.Fprintf(m.out, "Visibility set to %s.\n", m.settings.Visibility)
}

func (m *Menu) setUserAgent() {
	userAgent, ok := m.prompt("User agent (empty to reset): ")
	if !ok {
		return
	}

	m.settings.SetUserAgent(userAgent)
	m.saveSettings()
	fmt.Fprintf(m.out, "User agent set to %s.\n", m.settings.UserAgent)
}

func (m *Menu) storeKey() {
	key, ok := m.prompt("API key: ")
	if !ok || key == "" {
		return
	}

	if err := m.config.StoreCredential(key); err != nil {
		fmt.Fprintf(m.out, "Could not store the key: %v\n", err)

		return
	}

	fmt.Fprintln(m.out, "API key stored.")
}

func (m *Menu) showQuotas(ctx context.Context) {
	key, ok := m.credential()
	if !ok {
		return
	}

	client := m.newClient(key, m.settings.UserAgent)
	quotas, rl, err := client.Quotas(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Could not fetch quotas: %v\n", err)

		return
	}

	m.tracker.Observe(ctx, rl)
	m.tracker.SeedFromQuotas(ctx, quotas, m.settings.Visibility)
	RenderQuotas(m.out, quotas)
}

func (m *Menu) showHistory(ctx context.Context) {
	records, err := m.store.RecentScans(ctx, historyPageSize)
	if err != nil {
		fmt.Fprintf(m.out, "Could not read history: %v\n", err)

		return
	}

	RenderHistory(m.out, records)
}

func (m *Menu) saveSettings() {
	if err := m.settings.Save(m.config.Storage.SettingsPath); err != nil {
		fmt.Fprintf(m.out, "Could not save settings: %v\n", err)
	}
}

// New creates an interactive session over the given collaborators.
func New(cfg *config.Config, settings *config.Settings, store history.Store,
	tracker *urlscan.Tracker, options Options) *Menu {
	if options.In == nil {
		options.In = os.Stdin
	}
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.NewClient == nil {
		httpClient := &http.Client{Timeout: cfg.API.Timeout}
		options.NewClient = func(key, userAgent string) urlscan.Client {
			return urlscanio.New(httpClient, urlscanio.Options{
				BaseURL:   cfg.API.BaseURL,
				Key:       key,
				UserAgent: userAgent,
			})
		}
	}

	return &Menu{
		config:    cfg,
		settings:  settings,
		store:     store,
		tracker:   tracker,
		in:        bufio.NewScanner(options.In),
		out:       options.Out,
		newClient: options.NewClient,
	}
}
