package urlscan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scanio/pkg/domain"
	"scanio/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultResetBuffer is added on top of the reported reset time before a
	// suspended request is allowed through, absorbing clock skew between this
	// machine and the provider.
	DefaultResetBuffer = time.Second

	// DefaultProbeBudget is the number of requests assumed available after a
	// window reset the tracker did not get headers for. One probe is enough
	// to obtain fresh headers without risking a burst.
	DefaultProbeBudget = 1
)

// TrackerOptions tune the client-side rate-limit bookkeeping. The zero value
// selects the package defaults.
type TrackerOptions struct {
	// ResetBuffer is the extra wait added past ResetAt before resuming.
	ResetBuffer time.Duration
	// ProbeBudget is the Remaining value assumed after waiting out a window
	// reset, until real headers arrive.
	ProbeBudget int
	// Sleep overrides how the tracker suspends. Nil means Sleep.
	Sleep SleepFunc
	// Now overrides the time source. Nil means time.Now.
	Now func() time.Time
}

// Tracker keeps a client-side view of the provider's rate-limit budget and
// suspends callers that would run into a known-exhausted window.
//
// The tracking is advisory: headers can be missing, windows can roll over
// unobserved, and the provider's own 429 response stays the authoritative
// signal callers must handle regardless of what the tracker believes. The
// tracker errs on the conservative side. When several responses report the
// same reset window, the lowest Remaining wins; a response with a new ResetAt
// is always adopted as the fresher view.
//
// Before any response has been observed, Wait lets requests through
// unthrottled so the first response can seed the state with real headers.
// SeedFromQuotas optionally primes the state from the account quota report
// instead.
type Tracker struct {
	options TrackerOptions

	// mu protects last.
	mu sync.Mutex
	// last is the most recent view of the provider rate-limit headers, nil
	// until the first observation.
	last *RateLimitStatus
}

// NewTracker constructs a Tracker with the given options, substituting
// defaults for zero fields.
func NewTracker(options TrackerOptions) *Tracker {
	if options.ResetBuffer <= 0 {
		options.ResetBuffer = DefaultResetBuffer
	}
	if options.ProbeBudget <= 0 {
		options.ProbeBudget = DefaultProbeBudget
	}
	if options.Sleep == nil {
		options.Sleep = Sleep
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Tracker{options: options}
}

// Wait suspends the caller while the tracked budget is exhausted and the
// reset time has not passed yet. After waiting out a reset (or when the reset
// already lies in the past), Remaining is set to the probe budget so exactly
// that many requests go through before the next real headers are expected.
//
// Wait returns an error only when ctx is canceled while suspended.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	if t.last == nil || t.last.Remaining > 0 {
		t.mu.Unlock()

		return nil
	}
	resetAt := t.last.ResetAt
	t.mu.Unlock()

	if wait := resetAt.Sub(t.options.Now()); wait > 0 {
		wait += t.options.ResetBuffer
		logger.Info(ctx, "rate limit budget exhausted, waiting for window reset",
			zap.Duration("wait", wait),
			zap.Time("resetAt", resetAt))

		if err := t.options.Sleep(ctx, wait); err != nil {
			return fmt.Errorf("interrupted while waiting for rate limit reset: %w", err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil && t.last.Remaining <= 0 {
		t.last.Remaining = t.options.ProbeBudget
	}

	return nil
}

// Observe folds a server-reported status into the tracked state. A zero
// status (response without rate-limit headers) leaves the state unchanged.
func (t *Tracker) Observe(ctx context.Context, status RateLimitStatus) {
	if status.IsZero() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	adopt := func() {
		s := status
		t.last = &s
		logger.Debug(ctx, "rate limit status updated",
			zap.Int("limit", status.Limit),
			zap.Int("remaining", status.Remaining),
			zap.Time("resetAt", status.ResetAt),
			zap.String("scope", status.Scope))
	}

	// First observation: adopt it unconditionally.
	if t.last == nil {
		adopt()

		return
	}

	// If ResetAt changed, always adopt the new window.
	if !t.last.ResetAt.Equal(status.ResetAt) {
		adopt()

		return
	}

	// Otherwise prefer the lower Remaining to stay conservative.
	if status.Remaining < t.last.Remaining {
		adopt()
	}
}

// SeedFromQuotas primes the tracker from the account quota report, using the
// minute window of the quota bucket matching the given visibility. It only
// applies while no response headers have been observed yet; live headers
// always win over the seeded approximation.
func (t *Tracker) SeedFromQuotas(ctx context.Context, quotas Quotas, visibility domain.Visibility) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil {
		return
	}

	minute := quotas.ForVisibility(visibility).Minute
	if minute.Limit <= 0 {
		return
	}

	t.last = &RateLimitStatus{
		Limit:     minute.Limit,
		Remaining: minute.Remaining,
		// The quota report carries no reset timestamp, so assume the minute
		// window started just now. The first live headers replace this.
		ResetAt: t.options.Now().Add(time.Minute),
		Scope:   string(visibility),
	}

	logger.Debug(ctx, "rate limit seeded from account quotas",
		zap.Int("limit", minute.Limit),
		zap.Int("remaining", minute.Remaining),
		zap.String("visibility", string(visibility)))
}

// Status returns the last tracked view, or a zero status when nothing has
// been observed yet.
func (t *Tracker) Status() RateLimitStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last == nil {
		return RateLimitStatus{}
	}

	return *t.last
}
