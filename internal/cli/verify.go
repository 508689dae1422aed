package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-audit/internal/cli/render"
	"github.com/trebuchet-org/treb-audit/internal/domain"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		mode          string
		creationTx    string
		codeFile      string
		metadataFile  string
		libraries     []string
		isLibrary     bool
		artifactKind  string
		optimizerRuns string
	)

	cmd := &cobra.Command{
		Use:   "verify <contract> <address>",
		Short: "Verify a deployed contract against its compiled artifact",
		Long: `Verify that the code deployed at an address matches the compiled Foundry
artifact. Runtime code is always compared; supplying the creation
transaction adds the constructor code check, and supplying an exported
metadata document adds the metadata hash check.

Partial mode strips the compiler metadata trailer from both sides before
comparing, full mode compares byte for byte.`,
		Example: `  # Verify runtime code, metadata stripped
  treb-audit verify Counter 0x5FbDB2315678afecb367f032d93F642f64180aa3 --network sepolia

  # Full comparison including the constructor arguments
  treb-audit verify src/Counter.sol:Counter 0x5FbD... --mode full \
    --tx 0x6cf0... --network sepolia

  # Factory deployment, creation code recovered from the trace
  treb-audit verify Counter 0x5FbD... --tx 0x6cf0... --network sepolia

  # Contract linked against a deployed library
  treb-audit verify Router 0x5FbD... \
    --libraries src/lib/Math.sol:Math:0x1F98431c8aD98523631AE4a59f267346ea31F984

  # Library with call protection handling
  treb-audit verify Math 0x1F98... --library

  # Rebuild at a specific optimizer setting first
  treb-audit verify Counter 0x5FbD... --optimizer-runs 1000

  # Offline, against a captured code dump
  treb-audit verify Counter 0x5FbD... --code-file counter.hex`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			verifyMode, err := domain.ParseVerifyMode(mode)
			if err != nil {
				return err
			}

			if !common.IsHexAddress(args[1]) {
				return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, args[1])
			}

			req := &domain.VerifyRequest{
				Address:       common.HexToAddress(args[1]),
				Mode:          verifyMode,
				CodeFile:      codeFile,
				MetadataFile:  metadataFile,
				ArtifactKind:  artifactKind,
				OptimizerRuns: optimizerRuns,
			}
			if isLibrary {
				req.LibraryName = args[0]
			} else {
				req.ContractName = args[0]
			}

			if creationTx != "" {
				hash, err := domain.ParseTxHash(creationTx)
				if err != nil {
					return err
				}
				req.CreationTx = &hash
			}

			for _, raw := range libraries {
				link, err := domain.ParseLibraryLink(raw)
				if err != nil {
					return err
				}
				req.Libraries = append(req.Libraries, link)
			}

			report, err := app.VerifyContract.Run(cmd.Context(), req)
			stopProgress(app)
			if err != nil {
				return err
			}

			renderer := render.NewReportRenderer(cmd.OutOrStdout(), app.Config.JSON)
			if err := renderer.RenderReport(report); err != nil {
				return err
			}

			if !report.Verified() {
				return fmt.Errorf("verification failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "partial", "Comparison mode: partial (metadata stripped) or full (byte-exact)")
	cmd.Flags().StringVar(&creationTx, "tx", "", "Creation transaction hash, enables the constructor code check")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Hex file with captured runtime code, used instead of RPC")
	cmd.Flags().StringVar(&metadataFile, "metadata-file", "", "Exported metadata JSON document, enables the metadata hash check")
	cmd.Flags().StringArrayVar(&libraries, "libraries", nil, "Library link in <path>:<lib>:<address> format (repeatable)")
	cmd.Flags().BoolVar(&isLibrary, "library", false, "Treat the target as a deployed library")
	cmd.Flags().StringVar(&artifactKind, "artifact", "", "Pinned artifact kind under artifacts/<kind>/ instead of the build output")
	cmd.Flags().StringVar(&optimizerRuns, "optimizer-runs", "", "Rebuild with this optimizer-runs value before comparing")

	return cmd
}
