// Package urlscan defines the client abstraction for a URL scanning provider
// together with the submission, polling and rate-limit bookkeeping built on
// top of it. The concrete urlscan.io implementation lives in the urlscanio
// subpackage.
package urlscan

import (
	"context"
	"time"

	"scanio/pkg/domain"
)

// RateLimitStatus describes the current API rate-limit status as reported by
// the provider's response headers.
type RateLimitStatus struct {
	Limit     int       // Limit is the total number of allowed requests in the current window.
	Remaining int       // Remaining indicates how many requests are left in the current window.
	ResetAt   time.Time // ResetAt is when the rate-limit window resets.
	Scope     string    // Scope names the budget the window applies to, e.g. "public".
}

// IsZero reports whether the status carries no information, i.e. the response
// it was parsed from had no rate-limit headers.
func (s RateLimitStatus) IsZero() bool {
	return s.ResetAt.IsZero()
}

// WindowQuota describes usage within one rolling quota window.
type WindowQuota struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// ActionQuota groups the per-window quotas of a single API action.
type ActionQuota struct {
	Minute WindowQuota `json:"minute"`
	Hour   WindowQuota `json:"hour"`
	Day    WindowQuota `json:"day"`
}

// Quotas is the account-level quota report: one ActionQuota per API action
// the provider meters.
type Quotas struct {
	Public   ActionQuota `json:"public"`
	Unlisted ActionQuota `json:"unlisted"`
	Private  ActionQuota `json:"private"`
	Search   ActionQuota `json:"search"`
	Retrieve ActionQuota `json:"retrieve"`
}

// ForVisibility returns the scan quota bucket that submissions with the given
// visibility draw from.
func (q Quotas) ForVisibility(v domain.Visibility) ActionQuota {
	switch v {
	case domain.VisibilityUnlisted:
		return q.Unlisted
	case domain.VisibilityPrivate:
		return q.Private
	default:
		return q.Public
	}
}

// Client is the abstraction for URL scanning providers. Implementations
// submit URLs for scanning, fetch their results and report account quotas.
// Every call also returns the rate-limit status parsed from the response
// headers; a zero status means the response carried none.
//
//go:generate mockgen -package mockurlscan -source=interface.go -destination=mock/mockurlscan.go *
type Client interface {
	// Submit sends the scan request to the provider and returns the accepted
	// job.
	Submit(ctx context.Context, req domain.ScanRequest) (domain.ScanJob, RateLimitStatus, error)
	// Result retrieves the result for a previously submitted job by its ID.
	Result(ctx context.Context, jobID string) (*domain.ScanResult, RateLimitStatus, error)
	// Quotas fetches the account's per-action usage allowances.
	Quotas(ctx context.Context) (Quotas, RateLimitStatus, error)
}
