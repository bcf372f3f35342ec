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
	// DefaultPollInterval is the sleep before each result fetch.
	DefaultPollInterval = 10 * time.Second

	// DefaultMaxAttempts is how many result fetches a poll loop makes before
	// declaring the job timed out.
	DefaultMaxAttempts = 12

	// DefaultRateLimitWaits bounds how many consecutive rate-limit cooldowns
	// a poll loop tolerates before giving up on the job.
	DefaultRateLimitWaits = 10

	// progressNoticeEvery controls how often a still-processing notice is
	// logged, in attempts.
	progressNoticeEvery = 3
)

// PollState classifies where a poll loop stands after an attempt.
type PollState string

const (
	// StatePending means the result is not available yet and attempts remain.
	StatePending PollState = "pending"
	// StateReady means the provider returned the finished result.
	StateReady PollState = "ready"
	// StateExpired means the provider discarded the job; polling further is
	// pointless.
	StateExpired PollState = "expired"
	// StateTimedOut means the attempt budget is exhausted without a result.
	StateTimedOut PollState = "timed_out"
)

// Advance is the poll loop's transition function: given the error of the
// attempt that just finished and that attempt's zero-based index, it returns
// the state the loop moves to. Any non-terminal failure (result not found
// yet, transient network or upstream trouble) counts as pending until the
// attempt budget runs out. Rate-limited attempts never reach Advance; the
// loop cools down and repeats the same attempt index without consuming a
// slot.
func Advance(err error, attempt, maxAttempts int) PollState {
	switch {
	case err == nil:
		return StateReady
	case errors.Is(err, serrors.ErrGone):
		return StateExpired
	case attempt+1 >= maxAttempts:
		return StateTimedOut
	default:
		return StatePending
	}
}

// PollerOptions tune the poll loop. The zero value selects the package
// defaults.
type PollerOptions struct {
	// Interval is the sleep before each result fetch, including the first.
	Interval time.Duration
	// MaxAttempts bounds how many result fetches are made.
	MaxAttempts int
	// Cooldown is the extra sleep after a rate-limited fetch.
	Cooldown time.Duration
	// MaxRateLimitWaits bounds consecutive rate-limit cooldowns.
	MaxRateLimitWaits int
	// Sleep overrides how the loop sleeps. Nil means Sleep.
	Sleep SleepFunc
}

// Poller drives the result side of the scan workflow: it repeatedly fetches
// the result of a submitted job until the provider reports it finished, the
// job expires, or the attempt budget runs out. State transitions are decided
// by Advance; all waiting goes through the injected SleepFunc.
type Poller struct {
	client  Client
	tracker *Tracker
	options PollerOptions
}

// NewPoller constructs a Poller. The tracker may be nil, in which case
// response headers are not recorded.
func NewPoller(client Client, tracker *Tracker, options PollerOptions) *Poller {
	if options.Interval <= 0 {
		options.Interval = DefaultPollInterval
	}
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = DefaultMaxAttempts
	}
	if options.Cooldown <= 0 {
		options.Cooldown = DefaultCooldown
	}
	if options.MaxRateLimitWaits <= 0 {
		options.MaxRateLimitWaits = DefaultRateLimitWaits
	}
	if options.Sleep == nil {
		options.Sleep = Sleep
	}

	return &Poller{
		client:  client,
		tracker: tracker,
		options: options,
	}
}

// Poll fetches the result for the given job until a terminal state is
// reached. Terminal failures (expired job, exhausted attempts, persistent
// rate limiting) return a failure-shaped ScanResult together with the
// matching error so callers can both record and report them. A canceled
// context aborts the loop with no result at all.
func (p *Poller) Poll(ctx context.Context, job domain.ScanJob) (*domain.ScanResult, error) {
	ctx = logger.WithFields(ctx, zap.String("jobID", job.ID))

	rlWaits := 0
	attempt := 0
	for {
		if err := p.options.Sleep(ctx, p.options.Interval); err != nil {
			return nil, fmt.Errorf("interrupted while waiting to poll: %w", err)
		}

		res, rl, err := p.client.Result(ctx, job.ID)
		if p.tracker != nil {
			p.tracker.Observe(ctx, rl)
		}

		if err != nil && errors.Is(err, serrors.ErrRateLimited) {
			rlWaits++
			if rlWaits > p.options.MaxRateLimitWaits {
				err = serrors.Wrap(serrors.ErrRateLimited, err,
					"gave up on job %s after %d rate-limit cooldowns", job.ID, p.options.MaxRateLimitWaits)

				return failureResult(job.ID, err), err
			}

			logger.Warn(ctx, "result fetch rate limited, cooling down",
				zap.Duration("cooldown", p.options.Cooldown),
				zap.Int("consecutiveWaits", rlWaits))

			if err := p.options.Sleep(ctx, p.options.Cooldown); err != nil {
				return nil, fmt.Errorf("interrupted during rate limit cooldown: %w", err)
			}

			// Retry the same attempt index; a cooldown does not consume an
			// attempt slot.
			continue
		}
		rlWaits = 0

		switch Advance(err, attempt, p.options.MaxAttempts) {
		case StateReady:
			logger.Info(ctx, "scan result ready", zap.Int("attempts", attempt+1))

			return res, nil

		case StateExpired:
			err = fmt.Errorf("job %s expired at the provider: %w", job.ID, err)

			return failureResult(job.ID, err), err

		case StateTimedOut:
			err = serrors.Wrap(serrors.ErrTimeout, err,
				"no result for job %s after %d attempts", job.ID, p.options.MaxAttempts)

			return failureResult(job.ID, err), err

		case StatePending:
			attempt++
			if attempt%progressNoticeEvery == 0 {
				logger.Info(ctx, "scan still processing",
					zap.Int("attempts", attempt),
					zap.Int("maxAttempts", p.options.MaxAttempts))
			}
		}
	}
}

// failureResult builds the terminal ScanResult for a job that ended in err.
func failureResult(jobID string, err error) *domain.ScanResult {
	return &domain.ScanResult{
		JobID:      jobID,
		Err:        err.Error(),
		FinishedAt: time.Now().UTC(),
	}
}
