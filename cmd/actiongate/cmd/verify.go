package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matanmalka1/actiongate/internal/config"
	"github.com/matanmalka1/actiongate/internal/domain/contract"
	"github.com/matanmalka1/actiongate/internal/service"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check the canonical catalog against the contract registry",
	Long: `Verify resolves every canonical action with a representative context and
checks that it matches exactly one contract registry entry and that the two
role tables agree. A non-zero exit means the sources of truth have drifted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		registry := contract.NewRegistry(cfg.API.BasePrefix)
		if err := service.VerifyContracts(registry); err != nil {
			return fmt.Errorf("contract parity check failed:\n%w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "contract registry and canonical catalog agree")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
