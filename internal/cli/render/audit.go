package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

var (
	passStyle  = color.New(color.FgGreen)
	failStyle  = color.New(color.FgRed)
	errorStyle = color.New(color.FgYellow)
)

// AuditRenderer renders manifest audit runs
type AuditRenderer struct {
	out  io.Writer
	json bool
}

// NewAuditRenderer creates a new audit renderer
func NewAuditRenderer(out io.Writer, json bool) *AuditRenderer {
	return &AuditRenderer{
		out:  out,
		json: json,
	}
}

type auditEntryJSON struct {
	Contract string         `json:"contract"`
	Address  string         `json:"address"`
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Report   *domain.Report `json:"report,omitempty"`
}

type auditResultJSON struct {
	Manifest string           `json:"manifest"`
	Network  string           `json:"network,omitempty"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Errored  int              `json:"errored"`
	Entries  []auditEntryJSON `json:"entries"`
}

// RenderAuditResult renders the outcome of an audit run
func (r *AuditRenderer) RenderAuditResult(result *usecase.AuditResult) error {
	if r.json {
		return r.renderJSON(result)
	}

	fmt.Fprintf(r.out, "Auditing %d targets from %s", len(result.Entries), result.ManifestPath)
	if result.Network != "" {
		fmt.Fprintf(r.out, " against %s", result.Network)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateRows = false
	t.Style().Options.SeparateColumns = false
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, WidthMax: 60},
	})
	t.AppendHeader(table.Row{"", "Contract", "Address", "Detail"})

	for i := range result.Entries {
		entry := &result.Entries[i]
		t.AppendRow(table.Row{
			entryIcon(entry),
			entry.Target.Name(),
			entry.Target.Address,
			entryDetail(entry),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)

	summary := fmt.Sprintf("Audit complete: %d/%d passed", result.Passed, len(result.Entries))
	if result.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", result.Failed)
	}
	if result.Errored > 0 {
		summary += fmt.Sprintf(", %d errored", result.Errored)
	}
	if result.Success() {
		passStyle.Fprintln(r.out, summary)
	} else {
		failStyle.Fprintln(r.out, summary)
	}
	return nil
}

func (r *AuditRenderer) renderJSON(result *usecase.AuditResult) error {
	view := auditResultJSON{
		Manifest: result.ManifestPath,
		Network:  result.Network,
		Passed:   result.Passed,
		Failed:   result.Failed,
		Errored:  result.Errored,
		Entries:  make([]auditEntryJSON, 0, len(result.Entries)),
	}
	for i := range result.Entries {
		entry := &result.Entries[i]
		ej := auditEntryJSON{
			Contract: entry.Target.Name(),
			Address:  entry.Target.Address,
			Report:   entry.Report,
		}
		switch {
		case entry.Err != nil:
			ej.Status = "error"
			ej.Error = entry.Err.Error()
		case entry.Passed():
			ej.Status = "pass"
		default:
			ej.Status = "fail"
		}
		view.Entries = append(view.Entries, ej)
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func entryIcon(entry *usecase.AuditEntry) string {
	switch {
	case entry.Err != nil:
		return errorStyle.Sprint("⚠")
	case entry.Passed():
		return passStyle.Sprint("✓")
	default:
		return failStyle.Sprint("✗")
	}
}

// entryDetail summarizes why an entry did not pass. Passing entries stay
// blank so mismatches stand out in the table.
func entryDetail(entry *usecase.AuditEntry) string {
	if entry.Err != nil {
		return entry.Err.Error()
	}
	failed := entry.Report.FailedChecks()
	if len(failed) == 0 {
		return ""
	}
	labels := lo.Map(failed, func(check domain.CheckType, _ int) string {
		return CheckLabel(check)
	})
	return strings.Join(labels, ", ") + " mismatch"
}
