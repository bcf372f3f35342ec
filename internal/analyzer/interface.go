package analyzer

import (
	"context"

	"scanio/pkg/domain"
)

//go:generate mockgen -package mockanalyzer -source=interface.go -destination=mock/mockanalyzer.go *

// Submitter sends one scan request to the provider and returns the accepted job.
type Submitter interface {
	Submit(ctx context.Context, req domain.ScanRequest) (domain.ScanJob, error)
}

// Poller drives one accepted job to its terminal result.
type Poller interface {
	Poll(ctx context.Context, job domain.ScanJob) (*domain.ScanResult, error)
}
