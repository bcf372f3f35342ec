package urlscan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scanio/pkg/domain"
	"scanio/pkg/logger"
	"scanio/pkg/serrors"

	"go.uber.org/zap"
)

const (
	// DefaultCooldown is the fixed wait after a 429 response before the
	// request is tried again.
	DefaultCooldown = time.Minute

	// DefaultSubmitRetries is how many times a rate-limited submission is
	// re-sent after cooling down.
	DefaultSubmitRetries = 1
)

// SubmitterOptions tune the submission retry behavior. The zero value
// selects the package defaults.
type SubmitterOptions struct {
	// Cooldown is the wait before re-submitting after a 429.
	Cooldown time.Duration
	// MaxRetries bounds how many re-submissions a single Submit call may
	// make after rate-limited attempts. Only 429 responses are retried.
	MaxRetries int
	// Sleep overrides how the cooldown is spent. Nil means Sleep.
	Sleep SleepFunc
}

// Submitter sends scan requests through a Client while consulting the
// rate-limit tracker before each attempt and feeding response headers back
// into it. A rate-limited submission is retried after a fixed cooldown, a
// bounded number of times; every other failure propagates immediately.
type Submitter struct {
	client  Client
	tracker *Tracker
	options SubmitterOptions
}

// NewSubmitter constructs a Submitter. The tracker may be nil, in which case
// no client-side throttling is applied before requests.
func NewSubmitter(client Client, tracker *Tracker, options SubmitterOptions) *Submitter {
	if options.Cooldown <= 0 {
		options.Cooldown = DefaultCooldown
	}
	if options.MaxRetries < 0 {
		options.MaxRetries = 0
	} else if options.MaxRetries == 0 {
		options.MaxRetries = DefaultSubmitRetries
	}
	if options.Sleep == nil {
		options.Sleep = Sleep
	}

	return &Submitter{
		client:  client,
		tracker: tracker,
		options: options,
	}
}

// Submit sends the scan request and returns the accepted job. On a
// rate-limited response it cools down and re-submits, up to MaxRetries
// times; if the provider still rate-limits after the final retry, the
// rate-limit error is propagated to the caller.
func (s *Submitter) Submit(ctx context.Context, req domain.ScanRequest) (domain.ScanJob, error) {
	ctx = logger.WithFields(ctx, zap.String("URL", req.URL))

	for attempt := 0; ; attempt++ {
		if s.tracker != nil {
			if err := s.tracker.Wait(ctx); err != nil {
				return domain.ScanJob{}, fmt.Errorf("could not reserve rate limit: %w", err)
			}
		}

		job, rl, err := s.client.Submit(ctx, req)
		if s.tracker != nil {
			s.tracker.Observe(ctx, rl)
		}
		if err == nil {
			logger.Info(ctx, "URL submitted for scanning", zap.String("jobID", job.ID))

			return job, nil
		}

		if !errors.Is(err, serrors.ErrRateLimited) || attempt >= s.options.MaxRetries {
			return domain.ScanJob{}, fmt.Errorf("could not submit %q: %w", req.URL, err)
		}

		logger.Warn(ctx, "submission rate limited, cooling down before retry",
			zap.Duration("cooldown", s.options.Cooldown),
			zap.Int("attempt", attempt+1))

		if err := s.options.Sleep(ctx, s.options.Cooldown); err != nil {
			return domain.ScanJob{}, fmt.Errorf("interrupted during rate limit cooldown: %w", err)
		}
	}
}
