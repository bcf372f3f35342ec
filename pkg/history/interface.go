// Package history defines the persistence interface for finished scans, so
// past analyses can be reviewed without re-submitting anything.
//
//go:generate mockgen -package mockhistory -source=interface.go -destination=mock/mockhistory.go *
package history

import (
	"context"
	"time"

	"scanio/pkg/domain"
)

// Store persists terminal scan outcomes. Interrupted jobs are never stored.
type Store interface {
	// StoreScan appends a record for a finished (or failed) scan and returns
	// it with the assigned ID and creation timestamp.
	StoreScan(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error)
	// RecentScans returns up to limit records, newest first.
	RecentScans(ctx context.Context, limit uint) ([]domain.ScanRecord, error)
	// ScanByJobID returns the newest record for the given provider job ID,
	// or nil when no such scan was recorded.
	ScanByJobID(ctx context.Context, jobID string) (*domain.ScanRecord, error)
	// PurgeOlderThan deletes records created before the cutoff and reports
	// how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Close releases the underlying database handle. After Close, the store
	// must not be used.
	Close() error
}
