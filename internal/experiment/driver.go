package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rijpm101/nocr/internal/dataset"
	"github.com/rijpm101/nocr/internal/providers"
)

// Driver iterates the full experiment grid, one blocking generation call at a
// time: models x leave-one-out combinations x thinking budgets x strategies.
type Driver struct {
	runner  *Runner
	ds      *dataset.Dataset
	refs    map[string]*providers.FileRef
	models  []string
	budgets []int
	delay   time.Duration
	logger  *slog.Logger
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	Runner          *Runner
	Dataset         *dataset.Dataset
	Refs            map[string]*providers.FileRef
	Models          []string
	ThinkingBudgets []int

	// Delay is an optional fixed pause between generation calls. 0 disables it.
	Delay  time.Duration
	Logger *slog.Logger
}

// NewDriver creates a new driver.
func NewDriver(cfg DriverConfig) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		runner:  cfg.Runner,
		ds:      cfg.Dataset,
		refs:    cfg.Refs,
		models:  cfg.Models,
		budgets: cfg.ThinkingBudgets,
		delay:   cfg.Delay,
		logger:  logger,
	}
}

// UploadImages uploads every dataset image once and returns the handle cache
// reused across all experiments. An upload failure is fatal: it happens during
// setup, before any experiment runs.
func UploadImages(ctx context.Context, client providers.Client, ds *dataset.Dataset, logger *slog.Logger) (map[string]*providers.FileRef, error) {
	if logger == nil {
		logger = slog.Default()
	}

	refs := make(map[string]*providers.FileRef, len(ds.Images))
	for _, name := range ds.Images {
		ref, err := client.UploadImage(ctx, ds.ImagePath(name), dataset.JPEGMimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", name, err)
		}
		logger.Info("uploaded image", "image", name)
		refs[name] = ref
	}
	return refs, nil
}

// Run walks the grid strictly sequentially, invoking the runner for every
// point. Per-experiment failures do not stop the run; only context
// cancellation does.
func (d *Driver) Run(ctx context.Context) error {
	combos := LeaveOneOut(len(d.ds.Images))

	for _, model := range d.models {
		d.logger.Info("starting model", "model", model, "combinations", len(combos))

		for _, combo := range combos {
			target := d.ds.Images[combo.Target]
			d.logger.Info("target image", "image", target)

			for _, budget := range d.budgets {
				fewshot, err := d.fewShotTurns(target, combo)
				if err != nil {
					return err
				}
				d.runner.Run(ctx, Identity{
					Image:          target,
					Model:          model,
					Strategy:       StrategyFewShot,
					ThinkingBudget: budget,
				}, fewshot)
				if err := d.pause(ctx); err != nil {
					return err
				}

				zeroshot := BuildZeroShot(d.refs[target], d.ds.Prompt)
				d.runner.Run(ctx, Identity{
					Image:          target,
					Model:          model,
					Strategy:       StrategyZeroShot,
					ThinkingBudget: budget,
				}, zeroshot)
				if err := d.pause(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// fewShotTurns assembles the example sequence in combination order.
func (d *Driver) fewShotTurns(target string, combo Combination) ([]providers.Turn, error) {
	examples := make([]Example, 0, len(combo.Examples))
	for _, idx := range combo.Examples {
		name := d.ds.Images[idx]
		answer, ok := d.ds.GroundTruth(name)
		if !ok {
			return nil, fmt.Errorf("no ground truth loaded for %s", name)
		}
		examples = append(examples, Example{File: d.refs[name], Answer: answer})
	}
	return BuildFewShot(d.refs[target], d.ds.Prompt, examples), nil
}

func (d *Driver) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.delay):
		return nil
	}
}
