package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-audit/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReportRenderer handles rendering of verification reports
type ReportRenderer struct {
	out  io.Writer
	json bool
}

// NewReportRenderer creates a new report renderer
func NewReportRenderer(out io.Writer, json bool) *ReportRenderer {
	return &ReportRenderer{
		out:  out,
		json: json,
	}
}

// CheckLabel returns the display name for a check type
func CheckLabel(t domain.CheckType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "-", " "))
}

// RenderReport renders the result of verifying a single contract
func (r *ReportRenderer) RenderReport(report *domain.Report) error {
	if r.json {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(r.out, "Contract: %s\n", report.Contract)
	fmt.Fprintf(r.out, "Address:  %s\n", report.Address.Hex())
	fmt.Fprintf(r.out, "Mode:     %s\n", report.Mode)
	if report.CreationSource != "" {
		fmt.Fprintf(r.out, "Creation: %s\n", report.CreationSource)
	}
	fmt.Fprintln(r.out)

	for _, check := range report.Checks {
		if check.Equal {
			color.New(color.FgGreen).Fprintf(r.out, "  ✓ %s\n", CheckLabel(check.Type))
		} else {
			color.New(color.FgRed).Fprintf(r.out, "  ✗ %s\n", CheckLabel(check.Type))
		}
	}
	fmt.Fprintln(r.out)

	if report.Verified() {
		color.New(color.FgGreen).Fprintln(r.out, "✓ Verification completed successfully!")
		return nil
	}

	for _, failed := range report.FailedChecks() {
		color.New(color.FgRed).Fprintf(r.out, "✗ Verification failed: %s mismatch\n", CheckLabel(failed))
	}
	return nil
}
