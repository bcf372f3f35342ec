// Package urlscanio provides an urlscan.Client implementation backed by the
// public urlscan.io API.
package urlscanio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scanio/pkg/domain"
	"scanio/pkg/serrors"
	"scanio/pkg/urlscan"
)

// DefaultBaseURL is the public urlscan.io API root.
const DefaultBaseURL = "https://urlscan.io"

// Options configure the urlscan.io client.
type Options struct {
	// BaseURL overrides the API root, mainly for tests. Empty selects
	// DefaultBaseURL.
	BaseURL string
	// Key is the urlscan.io API key sent with every request.
	Key string
	// UserAgent is sent as the User-Agent header when non-empty.
	UserAgent string
}

// Client talks to the urlscan.io REST API and fulfills the urlscan.Client
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	options    Options
}

// ParseRateLimit extracts urlscan.io rate-limit information from the HTTP
// response headers. A response without a parseable reset timestamp yields a
// zero status, which the tracker treats as "no information".
func ParseRateLimit(h http.Header) urlscan.RateLimitStatus {
	resetAt, err := time.Parse(time.RFC3339Nano, h.Get("X-Rate-Limit-Reset"))
	if err != nil {
		return urlscan.RateLimitStatus{}
	}

	atoi := func(s string) int {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}

		return 0
	}

	return urlscan.RateLimitStatus{
		Limit:     atoi(h.Get("X-Rate-Limit-Limit")),
		Remaining: atoi(h.Get("X-Rate-Limit-Remaining")),
		ResetAt:   resetAt,
		Scope:     h.Get("X-Rate-Limit-Scope"),
	}
}

// newRequest builds a request against the configured API root with the
// credential and User-Agent headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.options.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Api-Key", c.options.Key)
	if c.options.UserAgent != "" {
		req.Header.Set("User-Agent", c.options.UserAgent)
	}

	return req, nil
}

// errorMessage extracts the human-readable part of an urlscan.io error body,
// falling back to the raw body text.
func errorMessage(body []byte) string {
	var e struct {
		Message     string `json:"message"`
		Description string `json:"description"`
		Status      int    `json:"status"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		if e.Description != "" && e.Description != e.Message {
			return e.Message + ": " + e.Description
		}

		return e.Message
	}

	return strings.TrimSpace(string(body))
}

// apiError maps a non-2xx response onto the matching semantic error kind.
func apiError(op string, status int, body []byte) error {
	msg := errorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		return serrors.With(serrors.ErrBadRequest, "%s rejected: %s", op, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return serrors.With(serrors.ErrUnauthorized, "credential rejected: %s", msg)
	case status == http.StatusPaymentRequired:
		return serrors.With(serrors.ErrQuotaExceeded, "quota exhausted: %s", msg)
	case status == http.StatusNotFound:
		return serrors.With(serrors.ErrNotFound, "result not available: %s", msg)
	case status == http.StatusGone:
		return serrors.With(serrors.ErrGone, "result gone: %s", msg)
	case status == http.StatusTooManyRequests:
		return serrors.With(serrors.ErrRateLimited, "rate limited: %s", msg)
	case status >= http.StatusInternalServerError:
		return serrors.With(serrors.ErrUnavailable, "%s failed upstream: %s", op, msg)
	default:
		return fmt.Errorf("%s failed: %s", op, msg)
	}
}

// Submit sends the scan request to urlscan.io. It returns the accepted job,
// the rate-limit status parsed from the response headers, and an error when
// the submission was not accepted.
func (c *Client) Submit(ctx context.Context, scanReq domain.ScanRequest) (domain.ScanJob, urlscan.RateLimitStatus, error) {
	// https://docs.urlscan.io/apis/urlscan-openapi/scanning/submitscan
	visibility := scanReq.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}

	type submitReq struct {
		URL        string   `json:"url"`
		Tags       []string `json:"tags,omitempty"`
		Visibility string   `json:"visibility"`
	}
	bodyBytes, err := json.Marshal(submitReq{
		URL:        scanReq.URL,
		Tags:       scanReq.NormalizedTags(),
		Visibility: string(visibility),
	})
	if err != nil {
		return domain.ScanJob{}, urlscan.RateLimitStatus{}, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/scan", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.ScanJob{}, urlscan.RateLimitStatus{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ScanJob{}, urlscan.RateLimitStatus{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl := ParseRateLimit(resp.Header)
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ScanJob{}, rl, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ScanJob{}, rl, apiError("submit", resp.StatusCode, b)
	}

	// successful
	var submitResp struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(b, &submitResp); err != nil {
		return domain.ScanJob{}, rl, fmt.Errorf("could not decode response: %w", err)
	}
	if submitResp.UUID == "" {
		return domain.ScanJob{}, rl, fmt.Errorf("response carries no job identifier")
	}

	return domain.ScanJob{ID: submitResp.UUID, SubmittedAt: time.Now().UTC()}, rl, nil
}

// Result fetches and decodes the scan result for the given job from
// urlscan.io. The raw response body is preserved on the returned result next
// to the decoded report subset.
func (c *Client) Result(ctx context.Context, jobID string) (*domain.ScanResult, urlscan.RateLimitStatus, error) {
	// https://docs.urlscan.io/apis/urlscan-openapi/scanning/resultapi
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/result/"+jobID, nil)
	if err != nil {
		return nil, urlscan.RateLimitStatus{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, urlscan.RateLimitStatus{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl := ParseRateLimit(resp.Header)
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rl, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, rl, apiError("result fetch", resp.StatusCode, b)
	}

	// successful
	var payload struct {
		Task struct {
			ReportURL string `json:"reportURL"`
		} `json:"task"`
		Page     domain.ReportPage `json:"page"`
		Verdicts struct {
			Overall domain.ReportVerdict `json:"overall"`
		} `json:"verdicts"`
		Stats domain.ReportStats `json:"stats"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, rl, fmt.Errorf("could not decode response: %w", err)
	}

	reportURL := payload.Task.ReportURL
	if reportURL == "" {
		reportURL = c.options.BaseURL + "/result/" + jobID + "/"
	}

	return &domain.ScanResult{
		JobID:     jobID,
		Success:   true,
		ReportURL: reportURL,
		Report: &domain.Report{
			Page:    &payload.Page,
			Verdict: &payload.Verdicts.Overall,
			Stats:   &payload.Stats,
		},
		Raw:        b,
		FinishedAt: time.Now().UTC(),
	}, rl, nil
}

// Quotas fetches the account's per-action usage allowances.
func (c *Client) Quotas(ctx context.Context) (urlscan.Quotas, urlscan.RateLimitStatus, error) {
	// https://urlscan.io/docs/api/
	req, err := c.newRequest(ctx, http.MethodGet, "/user/quotas", nil)
	if err != nil {
		return urlscan.Quotas{}, urlscan.RateLimitStatus{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return urlscan.Quotas{}, urlscan.RateLimitStatus{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl := ParseRateLimit(resp.Header)
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return urlscan.Quotas{}, rl, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return urlscan.Quotas{}, rl, apiError("quota fetch", resp.StatusCode, b)
	}

	var payload struct {
		Limits urlscan.Quotas `json:"limits"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return urlscan.Quotas{}, rl, fmt.Errorf("could not decode response: %w", err)
	}

	return payload.Limits, rl, nil
}

// Ensure Client conforms to the urlscan.Client interface at compile time.
var _ urlscan.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client and options to
// interact with the urlscan.io API.
func New(httpClient *http.Client, options Options) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		options:    options,
	}
}
