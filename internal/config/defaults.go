package config

import "time"

// DefaultConfig returns the configuration matching the reference experiment
// setup: four Utrecht 1899 tax-record scans, leave-one-out examples, budgets
// 0 and 2000, high sampling temperature for output diversity across runs.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "data",
		ResultsDir: "results",
		Images: []string{
			"NL-UtHUA_A376076_000033_l.jpg",
			"NL-UtHUA_A376076_000033_r.jpg",
			"NL-UtHUA_A376079_000005_l.jpg",
			"NL-UtHUA_A376079_000005_r.jpg",
		},
		Models: []string{
			"models/gemini-2.5-flash-lite",
		},
		ThinkingBudgets: []int{0, 2000},
		Temperature:     0.9,
		RequestDelay:    0,
		Provider: ProviderCfg{
			Type:    "gemini",
			APIKey:  "${GEMINI_API_KEY}",
			Timeout: 2 * time.Minute,
		},
	}
}
