package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rijpm101/nocr/internal/config"
	"github.com/rijpm101/nocr/internal/dataset"
	"github.com/rijpm101/nocr/internal/experiment"
	"github.com/rijpm101/nocr/internal/providers"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full experiment grid",
	Long: `Run uploads every configured image once, then walks the Cartesian product
of models, leave-one-out combinations, thinking budgets, and strategies,
issuing one synchronous generation call per point.

Per-experiment failures (empty responses, malformed JSON, transport errors)
are logged and recorded in the run manifest; they do not stop the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if resultsDir != "" {
			cfg.ResultsDir = resultsDir
			cfg.PredictionsDir = ""
			cfg.MetadataDir = ""
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		client, err := providers.NewClient(cfg.ToClientConfig(), logger)
		if err != nil {
			return err
		}

		ds, err := dataset.Load(cfg.DataDir, cfg.Images)
		if err != nil {
			return err
		}
		logger.Info("loaded dataset",
			"images", len(ds.Images),
			"schema", ds.ResponseSchema != nil,
		)

		for _, dir := range []string{cfg.PredictionsPath(), cfg.MetadataPath()} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory %s: %w", dir, err)
			}
		}

		ctx := cmd.Context()
		refs, err := experiment.UploadImages(ctx, client, ds, logger)
		if err != nil {
			return err
		}

		manifest := experiment.NewManifest(filepath.Join(cfg.ResultsDir, "manifest.json"), logger)
		logger.Info("starting run", "run_id", manifest.RunID())

		runner := experiment.NewRunner(experiment.RunnerConfig{
			Client:         client,
			Logger:         logger,
			PredictionsDir: cfg.PredictionsPath(),
			MetadataDir:    cfg.MetadataPath(),
			Temperature:    cfg.Temperature,
			ResponseSchema: ds.ResponseSchema,
			Manifest:       manifest,
		})

		driver := experiment.NewDriver(experiment.DriverConfig{
			Runner:          runner,
			Dataset:         ds,
			Refs:            refs,
			Models:          cfg.Models,
			ThinkingBudgets: cfg.ThinkingBudgets,
			Delay:           cfg.RequestDelay,
			Logger:          logger,
		})

		if err := driver.Run(ctx); err != nil {
			return err
		}

		logger.Info("experiments complete",
			"predictions", cfg.PredictionsPath(),
			"metadata", cfg.MetadataPath(),
		)
		return nil
	},
}
