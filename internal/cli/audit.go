package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-audit/internal/cli/render"
	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// NewAuditCmd creates the audit command
func NewAuditCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "audit [manifest]",
		Short: "Verify every deployment listed in an audit manifest",
		Long: `Verify a whole set of deployments from a YAML manifest. Targets run
concurrently; one mismatch never stops the others.

Example manifest (treb-audit.yaml):
  network: sepolia
  mode: partial
  targets:
    - contract: Counter
      address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
      creation-tx: "0x6cf0a4e5e6df27292f6b7c2fd8e7b25a22b1ec8837a63a85c4e4ef8470b2e9c1"
    - contract: src/Token.sol:Token
      address: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
      mode: full
    - library: Math
      address: "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"

The command exits non-zero when any target fails to verify.`,
		Example: `  # Audit the default manifest
  treb-audit audit

  # Audit a specific manifest with more workers
  treb-audit audit audits/mainnet.yaml --concurrency 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			manifestPath := "treb-audit.yaml"
			if len(args) > 0 {
				manifestPath = args[0]
			}

			params := usecase.AuditParams{
				ManifestPath: manifestPath,
				Concurrency:  concurrency,
			}

			result, err := app.AuditProject.Run(cmd.Context(), params)
			stopProgress(app)
			if err != nil {
				return err
			}

			renderer := render.NewAuditRenderer(cmd.OutOrStdout(), app.Config.JSON)
			if err := renderer.RenderAuditResult(result); err != nil {
				return err
			}

			if !result.Success() {
				return fmt.Errorf("%d of %d targets did not verify", result.Failed+result.Errored, len(result.Entries))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", usecase.DefaultAuditConcurrency, "Number of targets verified in parallel")

	return cmd
}
