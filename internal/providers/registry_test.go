package providers

import (
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("missing API key is fatal", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{Type: GeminiName}, nil); err == nil {
			t.Error("NewClient() without API key returned nil error")
		}
	})

	t.Run("unknown provider type", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{Type: "anthropic", APIKey: "k"}, nil); err == nil {
			t.Error("NewClient() with unknown type returned nil error")
		}
	})

	t.Run("gemini", func(t *testing.T) {
		client, err := NewClient(ClientConfig{Type: GeminiName, APIKey: "k", Timeout: time.Minute}, nil)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.Name() != GeminiName {
			t.Errorf("Name() = %q, want %q", client.Name(), GeminiName)
		}
	})

	t.Run("empty type defaults to gemini", func(t *testing.T) {
		client, err := NewClient(ClientConfig{APIKey: "k"}, nil)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.Name() != GeminiName {
			t.Errorf("Name() = %q, want %q", client.Name(), GeminiName)
		}
	})

	t.Run("openai", func(t *testing.T) {
		client, err := NewClient(ClientConfig{Type: OpenAIName, APIKey: "k"}, nil)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.Name() != OpenAIName {
			t.Errorf("Name() = %q, want %q", client.Name(), OpenAIName)
		}
	})
}
