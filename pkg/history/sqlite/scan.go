package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"scanio/pkg/domain"
)

const scansTable = "scans"

// StoreScan inserts the record and returns the stored row. The sqlite3
// dialect has no RETURNING support in the builder, so the row is read back
// by its generated ID.
func (s *SQLite) StoreScan(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error) {
	var row scanRow
	row.FromDomain(record)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	res, err := s.builder.Insert(scansTable).
		Rows(row).
		Executor().ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not store scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not read inserted scan id: %w", err)
	}

	stored, err := s.scanByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("stored scan %d disappeared", id)
	}

	return stored, nil
}

// RecentScans returns up to limit records ordered newest first.
func (s *SQLite) RecentScans(ctx context.Context, limit uint) ([]domain.ScanRecord, error) {
	var rows []scanRow
	if err := s.builder.From(scansTable).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch recent scans: %w", err)
	}

	return rowsToDomain(rows), nil
}

// ScanByJobID returns the newest record for the given provider job ID, or
// nil when none was recorded.
func (s *SQLite) ScanByJobID(ctx context.Context, jobID string) (*domain.ScanRecord, error) {
	var row scanRow
	found, err := s.builder.From(scansTable).
		Where(goqu.I("job_id").Eq(jobID)).
		Order(goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch scan by job id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// PurgeOlderThan deletes records created before the cutoff.
func (s *SQLite) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.builder.Delete(scansTable).
		Where(goqu.I("created_at").Lt(cutoff)).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not purge old scans: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not count purged scans: %w", err)
	}

	return n, nil
}

func (s *SQLite) scanByID(ctx context.Context, id int64) (*domain.ScanRecord, error) {
	var row scanRow
	found, err := s.builder.From(scansTable).
		Where(goqu.I("id").Eq(id)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch scan by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
