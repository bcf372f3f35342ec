package urlscanio_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scanio/pkg/domain"
	"scanio/pkg/serrors"
	"scanio/pkg/urlscan"
	"scanio/pkg/urlscan/urlscanio"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *urlscanio.Client {
	return urlscanio.New(&http.Client{Transport: fn}, urlscanio.Options{
		Key:       "test-key",
		UserAgent: "scanio-test/1.0",
	})
}

func rlHeader(limit, remaining string, resetAt time.Time) http.Header {
	h := http.Header{}
	h.Set("X-Rate-Limit-Limit", limit)
	h.Set("X-Rate-Limit-Remaining", remaining)
	h.Set("X-Rate-Limit-Reset", resetAt.Format(time.RFC3339Nano))
	h.Set("X-Rate-Limit-Scope", "public")

	return h
}

func Test_parseRateLimit_success(t *testing.T) {
	resetAt := time.Date(2025, 1, 2, 3, 4, 5, 678900000, time.UTC)

	rl := urlscanio.ParseRateLimit(rlHeader("120", "80", resetAt))
	require.False(t, rl.IsZero())
	require.Equal(t, 120, rl.Limit)
	require.Equal(t, 80, rl.Remaining)
	require.True(t, rl.ResetAt.Equal(resetAt))
	require.Equal(t, "public", rl.Scope)
}

func Test_parseRateLimit_missingOrBadHeaders(t *testing.T) {
	// a response without usable headers must parse to the zero status, not
	// an error, so the tracker leaves its state untouched
	require.True(t, urlscanio.ParseRateLimit(http.Header{}).IsZero())

	h := http.Header{}
	h.Set("X-Rate-Limit-Limit", "120")
	h.Set("X-Rate-Limit-Remaining", "80")
	h.Set("X-Rate-Limit-Reset", "not-a-time")
	require.True(t, urlscanio.ParseRateLimit(h).IsZero())
}

func TestClient_Submit_success(t *testing.T) {
	resetAt := time.Now().Add(1 * time.Hour).UTC()
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "urlscan.io", r.URL.Host)
		require.Equal(t, "/api/v1/scan", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))
		require.Equal(t, "scanio-test/1.0", r.Header.Get("User-Agent"))

		var payload struct {
			URL        string   `json:"url"`
			Tags       []string `json:"tags"`
			Visibility string   `json:"visibility"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "https://example.com", payload.URL)
		require.Equal(t, []string{"a", "b"}, payload.Tags, "tags must reach the wire de-duplicated and sorted")
		require.Equal(t, "unlisted", payload.Visibility)

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     rlHeader("100", "99", resetAt),
			Body:       io.NopCloser(strings.NewReader(`{"uuid":"abc-123","message":"Submission successful"}`)),
		}, nil
	})

	job, rl, err := c.Submit(context.Background(), domain.ScanRequest{
		URL:        "https://example.com",
		Tags:       []string{"b", "a", "b"},
		Visibility: domain.VisibilityUnlisted,
	})
	require.NoError(t, err)
	require.Equal(t, "abc-123", job.ID)
	require.False(t, job.SubmittedAt.IsZero())
	require.Equal(t, 100, rl.Limit)
	require.Equal(t, 99, rl.Remaining)
	require.True(t, rl.ResetAt.Equal(resetAt))
}

func TestClient_Submit_defaultsToPublicVisibility(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		var payload struct {
			Visibility string `json:"visibility"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "public", payload.Visibility)

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"uuid":"abc-456"}`)),
		}, nil
	})

	job, rl, err := c.Submit(context.Background(), domain.ScanRequest{URL: "https://example.com"})
	require.NoError(t, err)
	require.Equal(t, "abc-456", job.ID)
	require.True(t, rl.IsZero(), "no rate-limit headers means a zero status")
}

func TestClient_Submit_errorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   serrors.Kind
	}{
		{
			name:   "malformed request",
			status: http.StatusBadRequest,
			body:   `{"message":"Invalid URL","description":"DNS Error - Could not resolve domain","status":400}`,
			kind:   serrors.ErrBadRequest,
		},
		{
			name:   "bad credential",
			status: http.StatusUnauthorized,
			body:   `{"message":"API key supplied is incorrect","status":401}`,
			kind:   serrors.ErrUnauthorized,
		},
		{
			name:   "forbidden credential",
			status: http.StatusForbidden,
			body:   `{"message":"Not allowed","status":403}`,
			kind:   serrors.ErrUnauthorized,
		},
		{
			name:   "quota exhausted",
			status: http.StatusPaymentRequired,
			body:   `{"message":"Quota exceeded","description":"Daily private scan quota used up","status":402}`,
			kind:   serrors.ErrQuotaExceeded,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"message":"Rate limit exceeded","status":429}`,
			kind:   serrors.ErrRateLimited,
		},
		{
			name:   "upstream down",
			status: http.StatusServiceUnavailable,
			body:   "upstream maintenance",
			kind:   serrors.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tt.status,
					Body:       io.NopCloser(strings.NewReader(tt.body)),
				}, nil
			})

			_, _, err := c.Submit(context.Background(), domain.ScanRequest{URL: "https://example.com"})
			require.Error(t, err)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestClient_Submit_rateLimitHeadersSurviveErrors(t *testing.T) {
	resetAt := time.Now().Add(5 * time.Minute).UTC()
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Header:     rlHeader("100", "0", resetAt),
			Body:       io.NopCloser(strings.NewReader(`{"message":"Rate limit exceeded","status":429}`)),
		}, nil
	})

	_, rl, err := c.Submit(context.Background(), domain.ScanRequest{URL: "https://example.com"})
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrRateLimited)
	require.Equal(t, 0, rl.Remaining)
	require.True(t, rl.ResetAt.Equal(resetAt))
}

//nolint: lll
const resultBody = `{"task":{"uuid":"scan-123","reportURL":"https://urlscan.io/result/scan-123/"},"page":{"url":"https://evil.example/","domain":"evil.example","ip":"1.2.3.4","asn":"AS12345","country":"ZZ","server":"nginx"},"verdicts":{"overall":{"malicious":true,"score":42}},"stats":{"malicious":7}}`

func TestClient_Result_success(t *testing.T) {
	resetAt := time.Now().Add(time.Minute).UTC()
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/result/scan-123", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))
		require.Equal(t, "scanio-test/1.0", r.Header.Get("User-Agent"))

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     rlHeader("120", "118", resetAt),
			Body:       io.NopCloser(strings.NewReader(resultBody)),
		}, nil
	})

	res, rl, err := c.Result(context.Background(), "scan-123")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Success)
	require.Equal(t, "scan-123", res.JobID)
	require.Equal(t, "https://urlscan.io/result/scan-123/", res.ReportURL)
	require.JSONEq(t, resultBody, string(res.Raw), "raw payload must be preserved")

	require.NotNil(t, res.Report)
	require.Equal(t, &domain.ReportPage{
		URL:     "https://evil.example/",
		Domain:  "evil.example",
		IP:      "1.2.3.4",
		ASN:     "AS12345",
		Country: "ZZ",
		Server:  "nginx",
	}, res.Report.Page)
	require.Equal(t, &domain.ReportVerdict{Malicious: true, Score: 42}, res.Report.Verdict)
	require.Equal(t, &domain.ReportStats{Malicious: 7}, res.Report.Stats)

	require.Equal(t, 118, rl.Remaining)
}

func TestClient_Result_fallbackReportURL(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"page":{"domain":"example.com"}}`)),
		}, nil
	})

	res, _, err := c.Result(context.Background(), "scan-789")
	require.NoError(t, err)
	require.Equal(t, "https://urlscan.io/result/scan-789/", res.ReportURL)
}

func TestClient_Result_notReady404(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"message":"Scan is not finished yet","status":404}`)),
		}, nil
	})

	res, _, err := c.Result(context.Background(), "scan-404")
	require.Error(t, err)
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestClient_Result_gone410(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusGone,
			Body:       io.NopCloser(strings.NewReader(`{"message":"Scan was deleted","status":410}`)),
		}, nil
	})

	res, _, err := c.Result(context.Background(), "scan-410")
	require.Error(t, err)
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrGone)
}

//nolint: lll
const quotasBody = `{"source":"user","limits":{"public":{"minute":{"limit":60,"used":2,"remaining":58},"hour":{"limit":500,"used":2,"remaining":498},"day":{"limit":5000,"used":2,"remaining":4998}},"unlisted":{"minute":{"limit":30,"used":0,"remaining":30},"hour":{"limit":250,"used":0,"remaining":250},"day":{"limit":2500,"used":0,"remaining":2500}},"private":{"minute":{"limit":10,"used":1,"remaining":9},"hour":{"limit":50,"used":1,"remaining":49},"day":{"limit":500,"used":1,"remaining":499}},"search":{"minute":{"limit":120,"used":0,"remaining":120},"hour":{"limit":1000,"used":0,"remaining":1000},"day":{"limit":10000,"used":0,"remaining":10000}},"retrieve":{"minute":{"limit":120,"used":5,"remaining":115},"hour":{"limit":1200,"used":5,"remaining":1195},"day":{"limit":12000,"used":5,"remaining":11995}}}}`

func TestClient_Quotas_success(t *testing.T) {
	resetAt := time.Now().Add(time.Minute).UTC()
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/user/quotas", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     rlHeader("120", "119", resetAt),
			Body:       io.NopCloser(strings.NewReader(quotasBody)),
		}, nil
	})

	quotas, rl, err := c.Quotas(context.Background())
	require.NoError(t, err)

	require.Equal(t, urlscan.WindowQuota{Limit: 60, Used: 2, Remaining: 58}, quotas.Public.Minute)
	require.Equal(t, urlscan.WindowQuota{Limit: 5000, Used: 2, Remaining: 4998}, quotas.Public.Day)
	require.Equal(t, urlscan.WindowQuota{Limit: 10, Used: 1, Remaining: 9}, quotas.Private.Minute)
	require.Equal(t, urlscan.WindowQuota{Limit: 120, Used: 0, Remaining: 120}, quotas.Search.Minute)
	require.Equal(t, urlscan.WindowQuota{Limit: 12000, Used: 5, Remaining: 11995}, quotas.Retrieve.Day)

	// the visibility helper must pick the matching bucket
	require.Equal(t, quotas.Unlisted, quotas.ForVisibility(domain.VisibilityUnlisted))
	require.Equal(t, quotas.Public, quotas.ForVisibility(domain.VisibilityPublic))

	require.Equal(t, 119, rl.Remaining)
}

func TestClient_Quotas_badCredential(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"message":"API key supplied is incorrect","status":401}`)),
		}, nil
	})

	_, _, err := c.Quotas(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
}
