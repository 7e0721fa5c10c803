package experiment

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rijpm101/nocr/internal/providers"
)

// Record statuses.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Record is one attempted experiment in the run manifest. It makes "failed"
// distinguishable from "never attempted", which the output directory alone
// cannot show (failed experiments leave no files).
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Experiment identity
	Image          string `json:"image"`
	Model          string `json:"model"`
	Strategy       string `json:"strategy"`
	ThinkingBudget int    `json:"thinking_budget"`

	// Outcome
	Status    string                `json:"status"` // ok | empty | error
	Error     string                `json:"error,omitempty"`
	LatencyMs int                   `json:"latency_ms"`
	Usage     *providers.TokenUsage `json:"usage,omitempty"`
	RequestID string                `json:"request_id,omitempty"`
}

// Manifest records every attempted experiment of a run, flushed to disk after
// each append so a crash mid-run still leaves an accurate attempt log.
type Manifest struct {
	path   string
	logger *slog.Logger
	doc    manifestDoc
}

type manifestDoc struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Records   []Record  `json:"records"`
}

// NewManifest creates a manifest that persists to path.
func NewManifest(path string, logger *slog.Logger) *Manifest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manifest{
		path:   path,
		logger: logger,
		doc: manifestDoc{
			RunID:     uuid.New().String(),
			StartedAt: time.Now().UTC(),
		},
	}
}

// RunID returns the unique identifier of this run.
func (m *Manifest) RunID() string {
	return m.doc.RunID
}

// Append records one attempted experiment and flushes the manifest. The
// manifest is advisory; a flush failure is logged, never fatal to the run.
func (m *Manifest) Append(id Identity, rec Record) {
	rec.ID = uuid.New().String()
	rec.Timestamp = time.Now().UTC()
	rec.Image = id.Image
	rec.Model = id.Model
	rec.Strategy = id.Strategy
	rec.ThinkingBudget = id.ThinkingBudget

	m.doc.Records = append(m.doc.Records, rec)

	if err := m.flush(); err != nil {
		m.logger.Warn("failed to write run manifest", "path", m.path, "error", err)
	}
}

// Records returns a copy of the recorded attempts.
func (m *Manifest) Records() []Record {
	out := make([]Record, len(m.doc.Records))
	copy(out, m.doc.Records)
	return out
}

func (m *Manifest) flush() error {
	data, err := json.MarshalIndent(m.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}
