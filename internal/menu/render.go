package menu

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"scanio/internal/analyzer"
	"scanio/internal/config"
	"scanio/pkg/domain"
	"scanio/pkg/urlscan"
)

const detailColumnWidth = 60

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	return t
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen-3] + "..."
}

// RenderMenu prints the numbered option list of the interactive session.
func RenderMenu(out io.Writer) {
	t := newTable(out)
	t.SetTitle("scanio")
	t.AppendRows([]table.Row{
		{"1", "Analyze all URLs"},
		{"2", "Scan a single URL"},
		{"3", "Show settings"},
		{"4", "Add URL"},
		{"5", "Remove URL"},
		{"6", "Add tags"},
		{"7", "Remove tag"},
		{"8", "Set visibility"},
		{"9", "Set user agent"},
		{"10", "Store API key"},
		{"11", "Show quotas"},
		{"12", "Show history"},
		{"q", "Quit"},
	})
	t.Render()
}

// RenderSettings prints the current workspace state: submission options
// first, then the URL list with the positions RemoveURL expects.
func RenderSettings(out io.Writer, settings *config.Settings) {
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Visibility", settings.Visibility},
		{"User agent", settings.UserAgent},
		{"Tags", strings.Join(settings.Tags, ", ")},
	})
	t.Render()

	if len(settings.URLs) == 0 {
		fmt.Fprintln(out, "No URLs configured yet.")

		return
	}

	t = newTable(out)
	t.AppendHeader(table.Row{"#", "URL"})
	for i, url := range settings.URLs {
		t.AppendRow(table.Row{i + 1, url})
	}
	t.Render()
}

// RenderOutcomes prints one row per analyzed URL with its terminal state.
func RenderOutcomes(out io.Writer, outcomes []analyzer.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "Nothing was analyzed.")

		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"URL", "Job", "Status", "Details"})
	succeeded := 0
	for _, outcome := range outcomes {
		status := "failed"
		details := ""
		switch {
		case !outcome.Failed():
			status = "ok"
			succeeded++
			details = outcome.Result.ReportURL
		case outcome.Err != nil:
			details = truncate(outcome.Err.Error(), detailColumnWidth)
		case outcome.Result != nil:
			details = truncate(outcome.Result.Err, detailColumnWidth)
		}

		t.AppendRow(table.Row{outcome.Request.URL, outcome.Job.ID, status, details})
	}
	t.AppendFooter(table.Row{"Total", len(outcomes), "ok", succeeded})
	t.Render()
}

// RenderQuotas prints the per-action per-window usage table.
func RenderQuotas(out io.Writer, quotas urlscan.Quotas) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Action", "Minute", "Hour", "Day"})
	for _, row := range []struct {
		name  string
		quota urlscan.ActionQuota
	}{
		{"public scan", quotas.Public},
		{"unlisted scan", quotas.Unlisted},
		{"private scan", quotas.Private},
		{"search", quotas.Search},
		{"result retrieve", quotas.Retrieve},
	} {
		t.AppendRow(table.Row{
			row.name,
			formatWindow(row.quota.Minute),
			formatWindow(row.quota.Hour),
			formatWindow(row.quota.Day),
		})
	}
	t.Render()
}

func formatWindow(w urlscan.WindowQuota) string {
	return fmt.Sprintf("%d/%d (%d left)", w.Used, w.Limit, w.Remaining)
}

// RenderHistory prints recent scan records, newest first.
func RenderHistory(out io.Writer, records []domain.ScanRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No scans recorded yet.")

		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "URL", "Visibility", "Status", "Details", "When"})
	for _, record := range records {
		status := "failed"
		details := truncate(record.LastError, detailColumnWidth)
		if record.Success {
			status = "ok"
			details = record.ReportURL
		}

		t.AppendRow(table.Row{
			record.ID,
			truncate(record.URL, detailColumnWidth),
			record.Visibility,
			status,
			details,
			record.CreatedAt.Local().Format(time.DateTime),
		})
	}
	t.Render()
}
