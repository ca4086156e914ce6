package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matanmalka1/actiongate/internal/config"
	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
	"github.com/matanmalka1/actiongate/internal/domain/contract"
	"github.com/matanmalka1/actiongate/internal/service"
)

var (
	resolveFile       string
	resolveEntityPath string
	resolveEntityID   int64
	resolveRole       string
	resolveScope      string
	resolveOutput     string
	resolveExplain    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve descriptors from JSON into commands",
	Long: `Resolve reads a JSON array of action descriptors (bare strings or
objects) and prints the commands the engine would hand to the UI, after
canonical resolution, both role checks and the configured deny rules.

Example:
  echo '[{"key":"ready","binder_id":13}]' | actiongate resolve --role advisor
  actiongate resolve --file actions.json --entity-path /binders --entity-id 99 --explain`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveFile, "file", "f", "-", "descriptor JSON file (- for stdin)")
	resolveCmd.Flags().StringVar(&resolveEntityPath, "entity-path", "", "list/page path the actions came from (e.g. /binders)")
	resolveCmd.Flags().Int64Var(&resolveEntityID, "entity-id", 0, "id of the row the actions belong to")
	resolveCmd.Flags().StringVar(&resolveRole, "role", "", "current user role (advisor, secretary; empty = anonymous)")
	resolveCmd.Flags().StringVar(&resolveScope, "scope", "", "UI scope key")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "json", "output format (json or yaml)")
	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "include dropped descriptors with reasons")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	descriptors, err := readDescriptors(resolveFile)
	if err != nil {
		return err
	}

	resolver, err := buildResolver(cfg)
	if err != nil {
		return err
	}

	entityCtx := action.EntityContext{
		EntityPath: resolveEntityPath,
		EntityID:   resolveEntityID,
		ScopeKey:   resolveScope,
	}
	role := auth.Role(resolveRole)

	if resolveExplain {
		resolutions := resolver.Explain(cmd.Context(), descriptors, entityCtx, role)
		return encodeOutput(cmd.OutOrStdout(), resolveOutput, explainReport(resolutions))
	}

	commands := resolver.ResolveActions(cmd.Context(), descriptors, entityCtx, role)
	return encodeOutput(cmd.OutOrStdout(), resolveOutput, commands)
}

// buildResolver assembles the pipeline from configuration.
func buildResolver(cfg *config.EngineConfig) (*service.ResolverService, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	registry := contract.NewRegistry(cfg.API.BasePrefix)
	gate := auth.NewGate(auth.UnknownEndpointPolicy(cfg.Authorization.UnknownEndpointPolicy), logger, cfg.DevMode)

	opts := []service.ResolverOption{service.WithDevMode(cfg.DevMode)}
	if rules := cfg.PolicyRules(); len(rules) > 0 {
		engine, err := service.NewRuleService(rules)
		if err != nil {
			return nil, fmt.Errorf("compile rules: %w", err)
		}
		opts = append(opts, service.WithRules(engine))
	}
	return service.NewResolverService(registry, gate, logger, opts...), nil
}

// readDescriptors decodes a JSON array of descriptors from a file or stdin.
func readDescriptors(path string) ([]action.RawDescriptor, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var descriptors []action.RawDescriptor
	if err := json.NewDecoder(r).Decode(&descriptors); err != nil {
		return nil, fmt.Errorf("decode descriptors: %w", err)
	}
	return descriptors, nil
}

// explainEntry is the per-descriptor row of the --explain report.
type explainEntry struct {
	Token   string          `json:"token" yaml:"token"`
	Source  string          `json:"source,omitempty" yaml:"source,omitempty"`
	Dropped bool            `json:"dropped" yaml:"dropped"`
	Reason  string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Command *action.Command `json:"command,omitempty" yaml:"command,omitempty"`
}

func explainReport(resolutions []service.Resolution) []explainEntry {
	report := make([]explainEntry, 0, len(resolutions))
	for _, r := range resolutions {
		report = append(report, explainEntry{
			Token:   r.Token.Raw,
			Source:  string(r.Token.Source),
			Dropped: r.Dropped,
			Reason:  r.Reason,
			Command: r.Command,
		})
	}
	return report
}
