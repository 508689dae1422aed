package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-audit/internal/app"
	"github.com/trebuchet-org/treb-audit/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treb-audit",
		Short: "Bytecode verification for Foundry deployments",
		Long: `treb-audit checks that deployed contracts match their compiled Foundry
artifacts: creation code against the deployment transaction, runtime code
against the chain, and the metadata hash against an exported metadata
document.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			// Set up viper
			v := config.SetupViper(projectRoot, cmd)

			// Bind global flags whose names differ from their config keys
			bindGlobalFlags(v, cmd)

			// Initialize app with DI
			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store app in context
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				// Store cancel func to be called on command completion
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints] (e.g., mainnet, sepolia)")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC endpoint URL (overrides --network)")
	rootCmd.PersistentFlags().String("profile", "default", "Foundry profile whose build output to use")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "Abort the run after this duration")

	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewAuditCmd())
	rootCmd.AddCommand(NewArtifactsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags whose dashed name differs from the underscore config
	// key; everything else is covered by SetupViper's BindPFlag pass
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		v.Set("non_interactive", f.Value.String())
	}
	if f := cmd.Flag("rpc-url"); f != nil && f.Changed {
		v.Set("rpc_url", f.Value.String())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// stopProgress halts the spinner before a command renders its results.
func stopProgress(a *app.App) {
	if s, ok := a.Progress.(interface{ Stop() }); ok {
		s.Stop()
	}
}
