package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matanmalka1/actiongate/internal/config"
	"github.com/matanmalka1/actiongate/internal/domain/contract"
)

var registryOutput string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Print the endpoint contract registry",
	Long:  `Print every known backend endpoint with its method, path template and required role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		registry := contract.NewRegistry(cfg.API.BasePrefix)
		entries := registry.Entries()

		if registryOutput == "table" {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tMETHOD\tPATH\tROLE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Key, strings.ToUpper(e.Method.String()), e.Path, e.Role)
			}
			return w.Flush()
		}
		return encodeOutput(cmd.OutOrStdout(), registryOutput, entries)
	},
}

func init() {
	registryCmd.Flags().StringVarP(&registryOutput, "output", "o", "table", "output format (table, json or yaml)")
	rootCmd.AddCommand(registryCmd)
}
