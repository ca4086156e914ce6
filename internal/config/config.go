// Package config provides the engine configuration: where the backend API
// lives, the unknown-endpoint authorization policy, the optional dispatch
// journal, and operator-defined deny rules. File-based (YAML) with
// environment overrides; loaded once at startup.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/matanmalka1/actiongate/internal/domain/policy"
)

// EngineConfig is the top-level configuration.
type EngineConfig struct {
	// API configures the backend the runtime dispatches against.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Authorization configures the gate.
	Authorization AuthorizationConfig `yaml:"authorization" mapstructure:"authorization"`

	// Journal configures the optional dispatch journal.
	Journal JournalConfig `yaml:"journal" mapstructure:"journal"`

	// Rules are optional operator-defined deny rules. Empty means no rules.
	Rules []RuleConfig `yaml:"rules" mapstructure:"rules" validate:"omitempty,dive"`

	// DevMode raises drop-reason logging to Warn and enables the
	// unknown-endpoint warnings.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// APIConfig locates the backend API.
type APIConfig struct {
	// BaseURL is the backend origin plus base prefix,
	// e.g. "https://app.example.com/api/v1".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// BasePrefix is the prefix the contract matcher strips from runtime
	// paths. Default "/api/v1".
	BasePrefix string `yaml:"base_prefix" mapstructure:"base_prefix"`
	// Timeout is the per-dispatch HTTP timeout (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// AuthorizationConfig configures the gate.
type AuthorizationConfig struct {
	// UnknownEndpointPolicy is "allow" (historical fail-open, default) or
	// "deny".
	UnknownEndpointPolicy string `yaml:"unknown_endpoint_policy" mapstructure:"unknown_endpoint_policy" validate:"omitempty,endpoint_policy"`
}

// JournalConfig configures the dispatch journal.
type JournalConfig struct {
	// Enabled turns journaling on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Path is the SQLite database file. Required when enabled.
	Path string `yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
	// RetentionDays is how long entries are kept before pruning (default 30).
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days" validate:"omitempty,gt=0"`
}

// RuleConfig is the wire form of one deny rule.
type RuleConfig struct {
	ID        string `yaml:"id" mapstructure:"id" validate:"required"`
	Name      string `yaml:"name" mapstructure:"name"`
	Priority  int    `yaml:"priority" mapstructure:"priority"`
	Match     string `yaml:"match" mapstructure:"match"`
	Condition string `yaml:"condition" mapstructure:"condition"`
}

// Default returns the built-in defaults.
func Default() EngineConfig {
	return EngineConfig{
		API: APIConfig{
			BasePrefix: "/api/v1",
			Timeout:    "30s",
		},
		Authorization: AuthorizationConfig{
			UnknownEndpointPolicy: "allow",
		},
		Journal: JournalConfig{
			RetentionDays: 30,
		},
	}
}

// Load reads the configuration from the initialized Viper instance (config
// file plus ACTIONGATE_* environment overrides), applies defaults, and
// validates. A missing config file is not an error; the defaults apply.
func Load() (*EngineConfig, error) {
	cfg := Default()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults restores defaults for fields an explicit config file left
// empty.
func applyDefaults(cfg *EngineConfig) {
	def := Default()
	if cfg.API.BasePrefix == "" {
		cfg.API.BasePrefix = def.API.BasePrefix
	}
	if cfg.API.Timeout == "" {
		cfg.API.Timeout = def.API.Timeout
	}
	if cfg.Authorization.UnknownEndpointPolicy == "" {
		cfg.Authorization.UnknownEndpointPolicy = def.Authorization.UnknownEndpointPolicy
	}
	if cfg.Journal.RetentionDays <= 0 {
		cfg.Journal.RetentionDays = def.Journal.RetentionDays
	}
}

// PolicyRules converts the configured rules to domain rules.
func (c *EngineConfig) PolicyRules() []policy.Rule {
	rules := make([]policy.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, policy.Rule{
			ID:        r.ID,
			Name:      r.Name,
			Priority:  r.Priority,
			Match:     r.Match,
			Condition: r.Condition,
		})
	}
	return rules
}
