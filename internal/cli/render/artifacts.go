package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// ArtifactsRenderer renders the artifact index listing
type ArtifactsRenderer struct {
	out io.Writer
}

// NewArtifactsRenderer creates a new artifacts renderer
func NewArtifactsRenderer(out io.Writer) Renderer[*usecase.ArtifactListResult] {
	return &ArtifactsRenderer{
		out: out,
	}
}

// Render renders the contracts found in the forge build output
func (r *ArtifactsRenderer) Render(result *usecase.ArtifactListResult) error {
	if result.Total == 0 {
		fmt.Fprintln(r.out, "No artifacts found. Run forge build first.")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateRows = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(table.Row{"Contract", "Source", "Compiler", "Deployable"})

	for _, contract := range result.Contracts {
		deployable := "✓"
		if contract.Artifact == nil || !contract.Artifact.HasBytecode() {
			deployable = "-"
		}
		t.AppendRow(table.Row{
			contract.Name,
			contract.Path,
			contract.CompilerVersion(),
			deployable,
		})
	}
	fmt.Fprintln(r.out, t.Render())

	fmt.Fprintf(r.out, "\n%d contracts indexed\n", result.Total)
	return nil
}
