package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rijpm101/nocr/internal/providers"
)

// Config holds the full experiment configuration.
// Stored at: ./config.yaml (see Manager).
type Config struct {
	// Filesystem layout
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	ResultsDir     string `mapstructure:"results_dir" yaml:"results_dir"`
	PredictionsDir string `mapstructure:"predictions_dir" yaml:"predictions_dir"` // default: {results_dir}/predictions
	MetadataDir    string `mapstructure:"metadata_dir" yaml:"metadata_dir"`       // default: {results_dir}/metadata

	// Experiment grid
	Images          []string `mapstructure:"images" yaml:"images"`
	Models          []string `mapstructure:"models" yaml:"models"`
	ThinkingBudgets []int    `mapstructure:"thinking_budgets" yaml:"thinking_budgets"`

	// Generation parameters
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	// RequestDelay is an optional fixed pause between calls, a rate-limiting
	// safety valve. Disabled (0) by default.
	RequestDelay time.Duration `mapstructure:"request_delay" yaml:"request_delay"`

	Provider ProviderCfg `mapstructure:"provider" yaml:"provider"`
}

// ProviderCfg configures the generation-service client.
type ProviderCfg struct {
	Type    string        `mapstructure:"type" yaml:"type"`         // "gemini" or "openai"
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`   // supports ${ENV_VAR} syntax
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"` // optional endpoint override
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// PredictionsPath returns the prediction output directory.
func (c *Config) PredictionsPath() string {
	if c.PredictionsDir != "" {
		return c.PredictionsDir
	}
	return filepath.Join(c.ResultsDir, "predictions")
}

// MetadataPath returns the usage-metadata output directory.
func (c *Config) MetadataPath() string {
	if c.MetadataDir != "" {
		return c.MetadataDir
	}
	return filepath.Join(c.ResultsDir, "metadata")
}

// ToClientConfig converts the provider block for providers.NewClient,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) ToClientConfig() providers.ClientConfig {
	return providers.ClientConfig{
		Type:    c.Provider.Type,
		APIKey:  ResolveEnvVars(c.Provider.APIKey),
		BaseURL: c.Provider.BaseURL,
		Timeout: c.Provider.Timeout,
	}
}

// Validate checks that the configuration describes a runnable grid.
func (c *Config) Validate() error {
	if len(c.Images) == 0 {
		return fmt.Errorf("no images configured")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}
	if len(c.ThinkingBudgets) == 0 {
		return fmt.Errorf("no thinking budgets configured")
	}
	for _, b := range c.ThinkingBudgets {
		if b < 0 {
			return fmt.Errorf("thinking budget must be >= 0, got %d", b)
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %v", c.Temperature)
	}
	return nil
}
