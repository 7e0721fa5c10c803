package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rijpm101/nocr/internal/providers"
)

func newTestRunner(t *testing.T, mock *providers.MockClient) (*Runner, string, string, *Manifest) {
	t.Helper()

	dir := t.TempDir()
	predDir := filepath.Join(dir, "predictions")
	metaDir := filepath.Join(dir, "metadata")
	for _, d := range []string{predDir, metaDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	manifest := NewManifest(filepath.Join(dir, "manifest.json"), logger)

	runner := NewRunner(RunnerConfig{
		Client:         mock,
		Logger:         logger,
		PredictionsDir: predDir,
		MetadataDir:    metaDir,
		Temperature:    0.9,
		Manifest:       manifest,
	})
	return runner, predDir, metaDir, manifest
}

func testIdentity() Identity {
	return Identity{
		Image:          "A.jpg",
		Model:          "models/gemini-2.5-flash-lite",
		Strategy:       StrategyZeroShot,
		ThinkingBudget: 0,
	}
}

func testTurns() []providers.Turn {
	return BuildZeroShot(&providers.FileRef{URI: "files/a", MimeType: "image/jpeg"}, "prompt")
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	return len(entries)
}

func TestRunnerRun(t *testing.T) {
	t.Run("successful experiment writes both files", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{"a":1}`
		mock.Usage = providers.TokenUsage{
			CandidatesTokenCount: 10,
			ThoughtsTokenCount:   5,
			PromptTokenCount:     20,
			TotalTokenCount:      35,
		}

		runner, predDir, metaDir, manifest := newTestRunner(t, mock)
		id := testIdentity()
		runner.Run(context.Background(), id, testTurns())

		pred, err := os.ReadFile(filepath.Join(predDir, id.Filename()))
		if err != nil {
			t.Fatalf("prediction file not written: %v", err)
		}
		want := "{\n    \"a\": 1\n}"
		if string(pred) != want {
			t.Errorf("prediction = %q, want %q", pred, want)
		}

		metaBytes, err := os.ReadFile(filepath.Join(metaDir, id.Filename()))
		if err != nil {
			t.Fatalf("metadata file not written: %v", err)
		}
		var usage providers.TokenUsage
		if err := json.Unmarshal(metaBytes, &usage); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if usage != mock.Usage {
			t.Errorf("usage = %+v, want %+v", usage, mock.Usage)
		}

		recs := manifest.Records()
		if len(recs) != 1 || recs[0].Status != StatusOK {
			t.Errorf("manifest records = %+v, want one ok record", recs)
		}
	})

	t.Run("request carries generation parameters", func(t *testing.T) {
		mock := providers.NewMockClient()
		runner, _, _, _ := newTestRunner(t, mock)

		id := testIdentity()
		id.ThinkingBudget = 2000
		runner.Run(context.Background(), id, testTurns())

		reqs := mock.Requests()
		if len(reqs) != 1 {
			t.Fatalf("mock saw %d requests, want 1", len(reqs))
		}
		req := reqs[0]
		if req.Temperature != 0.9 {
			t.Errorf("temperature = %v, want 0.9", req.Temperature)
		}
		if req.ResponseMIMEType != providers.MIMETypeJSON {
			t.Errorf("response MIME type = %q, want %q", req.ResponseMIMEType, providers.MIMETypeJSON)
		}
		if req.ThinkingBudget != 2000 {
			t.Errorf("thinking budget = %d, want 2000", req.ThinkingBudget)
		}
		if req.RequestID == "" {
			t.Error("request ID not set")
		}
	})

	t.Run("empty response writes nothing", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = ""

		runner, predDir, metaDir, manifest := newTestRunner(t, mock)
		runner.Run(context.Background(), testIdentity(), testTurns())

		if n := countFiles(t, predDir); n != 0 {
			t.Errorf("predictions dir has %d files, want 0", n)
		}
		if n := countFiles(t, metaDir); n != 0 {
			t.Errorf("metadata dir has %d files, want 0", n)
		}

		recs := manifest.Records()
		if len(recs) != 1 || recs[0].Status != StatusEmpty {
			t.Errorf("manifest records = %+v, want one empty record", recs)
		}
	})

	t.Run("malformed JSON writes nothing", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{not json`

		runner, predDir, metaDir, manifest := newTestRunner(t, mock)
		runner.Run(context.Background(), testIdentity(), testTurns())

		if n := countFiles(t, predDir); n != 0 {
			t.Errorf("predictions dir has %d files, want 0", n)
		}
		if n := countFiles(t, metaDir); n != 0 {
			t.Errorf("metadata dir has %d files, want 0", n)
		}

		recs := manifest.Records()
		if len(recs) != 1 || recs[0].Status != StatusError {
			t.Errorf("manifest records = %+v, want one error record", recs)
		}
	})

	t.Run("transport error writes nothing and does not panic", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.GenerateErr = errors.New("quota exceeded")

		runner, predDir, metaDir, manifest := newTestRunner(t, mock)
		runner.Run(context.Background(), testIdentity(), testTurns())

		if n := countFiles(t, predDir); n != 0 {
			t.Errorf("predictions dir has %d files, want 0", n)
		}
		if n := countFiles(t, metaDir); n != 0 {
			t.Errorf("metadata dir has %d files, want 0", n)
		}

		recs := manifest.Records()
		if len(recs) != 1 || recs[0].Status != StatusError {
			t.Fatalf("manifest records = %+v, want one error record", recs)
		}
		if recs[0].Error != "quota exceeded" {
			t.Errorf("record error = %q, want %q", recs[0].Error, "quota exceeded")
		}
	})

	t.Run("rerun overwrites prior output", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{"a":1}`

		runner, predDir, _, _ := newTestRunner(t, mock)
		id := testIdentity()
		runner.Run(context.Background(), id, testTurns())

		mock.ResponseText = `{"a":2}`
		runner.Run(context.Background(), id, testTurns())

		pred, err := os.ReadFile(filepath.Join(predDir, id.Filename()))
		if err != nil {
			t.Fatalf("prediction file not written: %v", err)
		}
		want := "{\n    \"a\": 2\n}"
		if string(pred) != want {
			t.Errorf("prediction after rerun = %q, want %q", pred, want)
		}
		if n := countFiles(t, predDir); n != 1 {
			t.Errorf("predictions dir has %d files, want 1", n)
		}
	})
}
