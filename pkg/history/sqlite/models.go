package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"scanio/pkg/domain"
)

type scanRow struct {
	ID         int64          `db:"id" goqu:"skipinsert"`
	JobID      sql.NullString `db:"job_id"`
	URL        string         `db:"url"`
	Visibility string         `db:"visibility"`
	Success    bool           `db:"success"`
	ReportURL  sql.NullString `db:"report_url"`
	LastError  sql.NullString `db:"last_error"`
	Raw        []byte         `db:"raw"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *scanRow) ToDomain() *domain.ScanRecord {
	return &domain.ScanRecord{
		ID:         r.ID,
		JobID:      r.JobID.String,
		URL:        r.URL,
		Visibility: domain.Visibility(r.Visibility),
		Success:    r.Success,
		ReportURL:  r.ReportURL.String,
		LastError:  r.LastError.String,
		Raw:        json.RawMessage(r.Raw),
		CreatedAt:  r.CreatedAt,
	}
}

func (r *scanRow) FromDomain(record domain.ScanRecord) {
	*r = scanRow{
		ID:  record.ID,
		URL: record.URL,
		JobID: sql.NullString{
			String: record.JobID,
			Valid:  record.JobID != "",
		},
		Visibility: string(record.Visibility),
		Success:    record.Success,
		ReportURL: sql.NullString{
			String: record.ReportURL,
			Valid:  record.ReportURL != "",
		},
		LastError: sql.NullString{
			String: record.LastError,
			Valid:  record.LastError != "",
		},
		Raw:       record.Raw,
		CreatedAt: record.CreatedAt,
	}
}

func rowsToDomain(rows []scanRow) []domain.ScanRecord {
	out := make([]domain.ScanRecord, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
