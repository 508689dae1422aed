package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-audit/internal/cli/render"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// NewArtifactsCmd creates the artifacts command
func NewArtifactsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List compiled artifacts from the forge build output",
		Example: `  # List everything under out/
  treb-audit artifacts

  # Only artifacts matching a name or source path fragment
  treb-audit artifacts --filter token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListArtifactsParams{Filter: filter}
			result, err := app.ListArtifacts.Run(cmd.Context(), params)
			stopProgress(app)
			if err != nil {
				return err
			}

			renderer := render.NewArtifactsRenderer(cmd.OutOrStdout())
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring to match against contract names and source paths")

	return cmd
}
