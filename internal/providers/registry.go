package providers

import (
	"fmt"
	"log/slog"
	"time"
)

// ClientConfig is the provider block of the harness configuration, with the
// API key already resolved from the environment.
type ClientConfig struct {
	Type    string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs the configured generation client. An empty resolved
// API key is a fatal configuration error: it can only be detected at startup
// and every later call would fail.
func NewClient(cfg ClientConfig, logger *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key for provider %q (set the referenced environment variable)", cfg.Type)
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case GeminiName, "":
		logger.Info("using Gemini provider", "base_url", cfg.BaseURL)
		return NewGeminiClient(GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case OpenAIName:
		logger.Info("using OpenAI-compatible provider", "base_url", cfg.BaseURL)
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
