package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		cfg := mgr.Get()
		if len(cfg.Images) != 4 {
			t.Errorf("default images = %d, want 4", len(cfg.Images))
		}
		if cfg.Temperature != 0.9 {
			t.Errorf("default temperature = %v, want 0.9", cfg.Temperature)
		}
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "config.yaml")
		content := `
models:
  - models/gemini-2.5-flash
thinking_budgets: [0]
temperature: 0.5
request_delay: 2s
provider:
  type: openai
  api_key: ${NOCR_TEST_KEY}
`
		if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		mgr, err := NewManager(cfgPath)
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		cfg := mgr.Get()

		if len(cfg.Models) != 1 || cfg.Models[0] != "models/gemini-2.5-flash" {
			t.Errorf("models = %v", cfg.Models)
		}
		if len(cfg.ThinkingBudgets) != 1 || cfg.ThinkingBudgets[0] != 0 {
			t.Errorf("thinking budgets = %v", cfg.ThinkingBudgets)
		}
		if cfg.Temperature != 0.5 {
			t.Errorf("temperature = %v, want 0.5", cfg.Temperature)
		}
		if cfg.RequestDelay != 2*time.Second {
			t.Errorf("request delay = %v, want 2s", cfg.RequestDelay)
		}
		if cfg.Provider.Type != "openai" {
			t.Errorf("provider type = %q, want openai", cfg.Provider.Type)
		}
		// Defaults survive partial override
		if len(cfg.Images) != 4 {
			t.Errorf("images = %d, want default 4", len(cfg.Images))
		}
	})

	t.Run("unreadable config file fails", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(cfgPath, []byte(":\tnot yaml"), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := NewManager(cfgPath); err == nil {
			t.Error("NewManager() with broken YAML returned nil error")
		}
	})
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("NOCR_TEST_KEY", "secret-123")

	tests := []struct {
		in   string
		want string
	}{
		{"${NOCR_TEST_KEY}", "secret-123"},
		{"prefix-${NOCR_TEST_KEY}", "prefix-secret-123"},
		{"no-vars", "no-vars"},
		{"", ""},
		{"${NOCR_UNSET_VAR}", ""},
	}

	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToClientConfig(t *testing.T) {
	t.Setenv("NOCR_TEST_KEY", "secret-123")

	cfg := DefaultConfig()
	cfg.Provider.APIKey = "${NOCR_TEST_KEY}"
	cfg.Provider.BaseURL = "http://localhost:9999"

	cc := cfg.ToClientConfig()
	if cc.APIKey != "secret-123" {
		t.Errorf("APIKey = %q, want resolved secret", cc.APIKey)
	}
	if cc.Type != "gemini" {
		t.Errorf("Type = %q, want gemini", cc.Type)
	}
	if cc.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", cc.BaseURL)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() on written default error = %v", err)
	}
	cfg := mgr.Get()
	if cfg.Provider.APIKey != "${GEMINI_API_KEY}" {
		t.Errorf("api_key = %q, want env reference preserved", cfg.Provider.APIKey)
	}
	if cfg.Temperature != 0.9 {
		t.Errorf("temperature = %v, want 0.9", cfg.Temperature)
	}
}
