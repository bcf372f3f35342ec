package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Visibility is the access policy applied to a submitted scan: who can see
// the result once the provider has processed it.
type Visibility string

const (
	// VisibilityPublic makes the scan result visible to anyone.
	VisibilityPublic Visibility = "public"
	// VisibilityUnlisted makes the scan result reachable only via its direct link.
	VisibilityUnlisted Visibility = "unlisted"
	// VisibilityPrivate restricts the scan result to the submitting account.
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility converts a user-supplied string into a Visibility value.
// It accepts the three known policies case-insensitively and an empty string
// as public (the provider default).
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityPublic, "":
		return VisibilityPublic, nil
	case VisibilityUnlisted:
		return VisibilityUnlisted, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	}

	return "", fmt.Errorf("unknown visibility %q (want public, unlisted or private)", s)
}

// Valid reports whether v is one of the three known visibility policies.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}

	return false
}

// ScanRequest describes a single URL to be submitted for scanning.
// It is immutable once handed to a submitter; tags are treated as a set and
// deduplicated in the outgoing payload via NormalizedTags.
type ScanRequest struct {
	// URL is the target address to scan.
	URL string `json:"url"`
	// Tags are free-form labels attached to the scan. Duplicates and empty
	// entries are dropped when the request is serialized.
	Tags []string `json:"tags,omitempty"`
	// Visibility is the access policy for the resulting report.
	Visibility Visibility `json:"visibility"`
}

// NormalizedTags returns the request tags as a sorted set: trimmed,
// de-duplicated and with empty entries removed.
func (r ScanRequest) NormalizedTags() []string {
	return NormalizeTags(r.Tags)
}

// ScanJob identifies a scan accepted by the provider but not yet finished.
// The ID is an opaque token minted by the provider; it is only meaningful
// for fetching the matching result.
type ScanJob struct {
	// ID is the provider-assigned job identifier.
	ID string `json:"id"`
	// SubmittedAt is when the submission was accepted.
	SubmittedAt time.Time `json:"submittedAt"`
}

// ReportPage describes the page the provider ended up on when scanning.
type ReportPage struct {
	URL     string `json:"url,omitempty"`
	Domain  string `json:"domain,omitempty"`
	IP      string `json:"ip,omitempty"`
	ASN     string `json:"asn,omitempty"`
	Country string `json:"country,omitempty"`
	Server  string `json:"server,omitempty"`
}

// ReportVerdict is the provider's overall judgement of the scanned page.
type ReportVerdict struct {
	Malicious bool `json:"malicious,omitempty"`
	Score     int  `json:"score,omitempty"`
}

// ReportStats aggregates counters the provider computed for the scan.
type ReportStats struct {
	Malicious int `json:"malicious,omitempty"`
}

// Report holds the decoded subset of a provider scan report that the
// application cares about. Fields are nil when the provider omitted the
// corresponding section.
type Report struct {
	Page    *ReportPage    `json:"page,omitempty"`
	Verdict *ReportVerdict `json:"verdicts,omitempty"`
	Stats   *ReportStats   `json:"stats,omitempty"`
}

// ScanResult is the terminal value of a scan job: either a fetched report or
// the error that ended the job. It is never mutated after creation.
type ScanResult struct {
	// JobID is the identifier of the job this result belongs to.
	JobID string `json:"jobId"`
	// Success is true when a report was retrieved.
	Success bool `json:"success"`
	// ReportURL points at the human-readable report page, when available.
	ReportURL string `json:"reportUrl,omitempty"`
	// Report is the decoded report subset; nil on failure.
	Report *Report `json:"report,omitempty"`
	// Raw is the unmodified provider response body; nil on failure.
	Raw json.RawMessage `json:"-"`
	// Err describes why the job failed; empty on success.
	Err string `json:"error,omitempty"`
	// FinishedAt is when the terminal state was reached.
	FinishedAt time.Time `json:"finishedAt"`
}

// ScanRecord is a persisted history entry for a finished (or failed) scan.
type ScanRecord struct {
	// ID is the local record identifier assigned by the history store.
	ID int64 `json:"id"`
	// JobID is the provider job identifier; empty when submission itself failed.
	JobID string `json:"jobId,omitempty"`
	// URL is the target that was analyzed.
	URL string `json:"url"`
	// Visibility is the policy the scan was submitted with.
	Visibility Visibility `json:"visibility"`
	// Success is true when the scan produced a report.
	Success bool `json:"success"`
	// ReportURL points at the provider report page, when available.
	ReportURL string `json:"reportUrl,omitempty"`
	// LastError is the message of the error that ended the job, if any.
	LastError string `json:"-"`
	// Raw is the unmodified provider result payload, if any.
	Raw json.RawMessage `json:"-"`
	// CreatedAt is when the record was stored.
	CreatedAt time.Time `json:"createdAt"`
}
