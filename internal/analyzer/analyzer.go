// Package analyzer runs the batch scan workflow: URLs are analyzed strictly
// one at a time, each through submit-then-poll, with a fixed pause between
// finished jobs. Per-URL failures are recorded in history and the batch moves
// on; only an interrupted context stops the run.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scanio/pkg/domain"
	"scanio/pkg/history"
	"scanio/pkg/logger"
	"scanio/pkg/urlscan"
)

// DefaultInterRequestDelay is the pause between two finished jobs in a batch.
const DefaultInterRequestDelay = 5 * time.Second

// Outcome is the terminal state of one analyzed URL: the accepted job when
// submission succeeded, the result when polling finished, the stored history
// record, and the error that ended the job.
type Outcome struct {
	Request domain.ScanRequest
	Job     domain.ScanJob
	Result  *domain.ScanResult
	Record  *domain.ScanRecord
	Err     error
}

// Failed reports whether the URL ended without a successful report.
func (o Outcome) Failed() bool {
	return o.Err != nil || o.Result == nil || !o.Result.Success
}

// Options defines the tunables of a batch run.
type Options struct {
	// InterRequestDelay is the pause between two finished jobs.
	InterRequestDelay time.Duration
	// Sleep, when set, replaces the default context-aware sleep.
	Sleep urlscan.SleepFunc
}

// Analyzer owns one batch workflow over an injected submitter, poller and
// history store.
type Analyzer struct {
	submitter Submitter
	poller    Poller
	store     history.Store
	options   Options
}

// Run analyzes the given requests sequentially and returns one Outcome per
// finished job, in input order. Every per-job failure is recorded in history
// and the batch continues. An interrupted context aborts the run: the
// in-flight job is dropped without a history record and the outcomes
// collected so far are returned alongside the error.
func (a *Analyzer) Run(ctx context.Context, requests []domain.ScanRequest) ([]Outcome, error) {
	// every log line of a batch carries the same run ID
	ctx = logger.WithFields(ctx, zap.String("runID", uuid.NewString()))
	logger.Info(ctx, "starting batch analysis", zap.Int("urls", len(requests)))

	outcomes := make([]Outcome, 0, len(requests))
	for i, req := range requests {
		if i > 0 {
			if err := a.options.Sleep(ctx, a.options.InterRequestDelay); err != nil {
				return outcomes, fmt.Errorf("batch interrupted between jobs: %w", err)
			}
		}

		outcome, err := a.analyze(ctx, req)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if !outcome.Failed() {
			succeeded++
		}
	}
	logger.Info(ctx, "batch analysis finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(outcomes)-succeeded))

	return outcomes, nil
}

// analyze runs one URL to its terminal state. The returned error is non-nil
// only when the context was interrupted; per-job failures land in the
// Outcome instead.
func (a *Analyzer) analyze(ctx context.Context, req domain.ScanRequest) (Outcome, error) {
	ctx = logger.WithFields(ctx, zap.String("URL", req.URL))
	outcome := Outcome{Request: req}

	job, err := a.submitter.Submit(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return outcome, fmt.Errorf("batch interrupted during submit: %w", err)
		}

		logger.Error(ctx, "error submitting URL", zap.Error(err))
		outcome.Err = err
		a.record(ctx, &outcome)

		return outcome, nil
	}
	outcome.Job = job

	res, err := a.poller.Poll(ctx, job)
	if res == nil {
		// an interrupted poll leaves no result; the job is incomplete, not failed
		return outcome, fmt.Errorf("batch interrupted while polling job %s: %w", job.ID, err)
	}
	outcome.Result = res
	outcome.Err = err
	if err != nil {
		logger.Error(ctx, "error analyzing URL", zap.Error(err))
	}
	a.record(ctx, &outcome)

	return outcome, nil
}

// record persists the outcome in history, best effort: a failing history
// write is logged and the batch keeps going.
func (a *Analyzer) record(ctx context.Context, outcome *Outcome) {
	visibility := outcome.Request.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}

	record := domain.ScanRecord{
		JobID:      outcome.Job.ID,
		URL:        outcome.Request.URL,
		Visibility: visibility,
	}
	if res := outcome.Result; res != nil {
		record.Success = res.Success
		record.ReportURL = res.ReportURL
		record.LastError = res.Err
		record.Raw = res.Raw
	} else if outcome.Err != nil {
		record.LastError = outcome.Err.Error()
	}

	stored, err := a.store.StoreScan(ctx, record)
	if err != nil {
		logger.Error(ctx, "could not record scan in history", zap.Error(err))

		return
	}
	outcome.Record = stored
}

// New creates an Analyzer with the given collaborators.
func New(submitter Submitter, poller Poller, store history.Store, options Options) *Analyzer {
	if options.InterRequestDelay <= 0 {
		options.InterRequestDelay = DefaultInterRequestDelay
	}
	if options.Sleep == nil {
		options.Sleep = urlscan.Sleep
	}

	return &Analyzer{
		submitter: submitter,
		poller:    poller,
		store:     store,
		options:   options,
	}
}
