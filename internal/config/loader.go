package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, actiongate.yaml/.yml is searched in the
// standard locations. The search requires an explicit YAML extension so the
// binary itself is never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file anywhere; ReadInConfig will return
		// ConfigFileNotFoundError, which Load handles gracefully.
		viper.SetConfigName("actiongate")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: ACTIONGATE_API_BASE_URL etc.
	viper.SetEnvPrefix("ACTIONGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches the standard locations for actiongate.yaml/.yml.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".actiongate"),
		"/etc/actiongate",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "actiongate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys so environment variables can
// override them: ACTIONGATE_API_BASE_URL overrides api.base_url.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.base_prefix")
	_ = viper.BindEnv("api.timeout")
	_ = viper.BindEnv("authorization.unknown_endpoint_policy")
	_ = viper.BindEnv("journal.enabled")
	_ = viper.BindEnv("journal.path")
	_ = viper.BindEnv("journal.retention_days")
	_ = viper.BindEnv("dev_mode")
}
