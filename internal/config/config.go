// Package config handles loading the experiment configuration. Defaults match
// the reference experiment constants; a config.yaml or NOCR_-prefixed
// environment variables may override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Manager loads configuration once at startup. The harness is a one-shot
// batch process, so there is no hot reload.
type Manager struct {
	v      *viper.Viper
	config *Config
}

// NewManager creates a new config manager and loads the configuration.
// cfgFile may be empty, in which case ./config.yaml or ~/.nocr/config.yaml
// is used when present.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	cm.v.SetDefault("data_dir", defaults.DataDir)
	cm.v.SetDefault("results_dir", defaults.ResultsDir)
	cm.v.SetDefault("images", defaults.Images)
	cm.v.SetDefault("models", defaults.Models)
	cm.v.SetDefault("thinking_budgets", defaults.ThinkingBudgets)
	cm.v.SetDefault("temperature", defaults.Temperature)
	cm.v.SetDefault("request_delay", defaults.RequestDelay)
	cm.v.SetDefault("provider", defaults.Provider)

	// Environment variables with NOCR_ prefix
	cm.v.SetEnvPrefix("NOCR")
	cm.v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.nocr")
	}

	// Try to read config file (not required)
	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (cm *Manager) Get() *Config {
	return cm.config
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# nocr configuration
# The API key uses ${ENV_VAR} syntax to reference an environment variable.
# Set it in your shell: export GEMINI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
