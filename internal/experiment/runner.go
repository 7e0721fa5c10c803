package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rijpm101/nocr/internal/providers"
)

// Runner executes single experiments against the generation service and
// persists their outputs. Per-experiment failures are logged and recorded in
// the manifest; they never propagate to the caller.
type Runner struct {
	client         providers.Client
	logger         *slog.Logger
	predictionsDir string
	metadataDir    string
	temperature    float64
	responseSchema json.RawMessage
	manifest       *Manifest
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Client         providers.Client
	Logger         *slog.Logger
	PredictionsDir string
	MetadataDir    string
	Temperature    float64
	ResponseSchema json.RawMessage
	Manifest       *Manifest // optional
}

// NewRunner creates a new experiment runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:         cfg.Client,
		logger:         logger,
		predictionsDir: cfg.PredictionsDir,
		metadataDir:    cfg.MetadataDir,
		temperature:    cfg.Temperature,
		responseSchema: cfg.ResponseSchema,
		manifest:       cfg.Manifest,
	}
}

// Run executes one experiment: a single synchronous generation call, then a
// prediction file and a usage-metadata file on success. Re-running the same
// identity silently overwrites prior output files.
func (r *Runner) Run(ctx context.Context, id Identity, turns []providers.Turn) {
	logger := r.logger.With(
		"image", id.Image,
		"model", ModelShortName(id.Model),
		"strategy", id.Strategy,
		"thinking_budget", id.ThinkingBudget,
	)
	logger.Info("running experiment")

	req := &providers.GenerateRequest{
		Model:            id.Model,
		Turns:            turns,
		Temperature:      r.temperature,
		ResponseMIMEType: providers.MIMETypeJSON,
		ResponseSchema:   r.responseSchema,
		ThinkingBudget:   id.ThinkingBudget,
		RequestID:        uuid.New().String(),
	}

	start := time.Now()
	result, err := r.client.Generate(ctx, req)
	latencyMs := int(time.Since(start).Milliseconds())

	if err != nil {
		logger.Error("generation failed", "error", err)
		r.record(id, Record{
			Status:    StatusError,
			Error:     err.Error(),
			LatencyMs: latencyMs,
			RequestID: req.RequestID,
		})
		return
	}

	if strings.TrimSpace(result.Text) == "" {
		logger.Warn("empty response, no output written")
		r.record(id, Record{
			Status:    StatusEmpty,
			LatencyMs: latencyMs,
			Usage:     &result.Usage,
			RequestID: req.RequestID,
		})
		return
	}

	prediction, err := normalizePrediction(result.Text)
	if err != nil {
		logger.Error("response is not valid JSON", "error", err)
		r.record(id, Record{
			Status:    StatusError,
			Error:     err.Error(),
			LatencyMs: latencyMs,
			Usage:     &result.Usage,
			RequestID: req.RequestID,
		})
		return
	}

	if err := r.writeOutputs(id, prediction, result.Usage); err != nil {
		logger.Error("failed to write outputs", "error", err)
		r.record(id, Record{
			Status:    StatusError,
			Error:     err.Error(),
			LatencyMs: latencyMs,
			Usage:     &result.Usage,
			RequestID: req.RequestID,
		})
		return
	}

	logger.Info("saved prediction",
		"file", id.Filename(),
		"total_tokens", result.Usage.TotalTokenCount,
	)
	r.record(id, Record{
		Status:    StatusOK,
		LatencyMs: latencyMs,
		Usage:     &result.Usage,
		RequestID: req.RequestID,
	})
}

func (r *Runner) record(id Identity, rec Record) {
	if r.manifest != nil {
		r.manifest.Append(id, rec)
	}
}

// writeOutputs writes the prediction and metadata files back-to-back. There
// is no atomicity between the two writes.
func (r *Runner) writeOutputs(id Identity, prediction []byte, usage providers.TokenUsage) error {
	name := id.Filename()

	if err := os.WriteFile(filepath.Join(r.predictionsDir, name), prediction, 0o644); err != nil {
		return fmt.Errorf("failed to write prediction: %w", err)
	}

	meta, err := json.MarshalIndent(usage, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.metadataDir, name), meta, 0o644); err != nil {
		return fmt.Errorf("failed to write usage metadata: %w", err)
	}
	return nil
}

// normalizePrediction parses the response text as JSON and re-serializes it
// pretty-printed. Model output is not schema-validated before parsing, so a
// malformed response fails here.
func normalizePrediction(text string) ([]byte, error) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return json.MarshalIndent(doc, "", "    ")
}
