// Package cmd provides the CLI commands for actiongate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matanmalka1/actiongate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "actiongate",
	Short: "actiongate - action resolution & authorization engine",
	Long: `actiongate resolves the loosely-shaped action descriptors the backend
attaches to entity records (binders, charges, clients, VAT work items) into
safe, executable commands: canonical identity, endpoint, payload, role
authorization and confirmation prompts.

The CLI is an inspection tool; it resolves but never dispatches.

Commands:
  resolve     Resolve descriptors from JSON into commands
  registry    Print the endpoint contract registry
  verify      Cross-check the canonical catalog against the registry
  version     Print version information

Configuration:
  Config is loaded from actiongate.yaml in the current directory,
  $HOME/.actiongate/, or /etc/actiongate/.

  Environment variables can override config values with the ACTIONGATE_
  prefix. Example: ACTIONGATE_AUTHORIZATION_UNKNOWN_ENDPOINT_POLICY=deny`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./actiongate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
