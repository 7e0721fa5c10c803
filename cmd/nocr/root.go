package main

import (
	"github.com/spf13/cobra"

	"github.com/rijpm101/nocr/version"
)

var (
	cfgFile    string
	dataDir    string
	resultsDir string
)

var rootCmd = &cobra.Command{
	Use:   "nocr",
	Short: "VLM structured-extraction experiments on scanned tax records",
	Long: `nocr runs extraction experiments against hosted vision-language models
using the Utrecht 1899 handwritten tax-record scans.

Each run walks the full grid of models, leave-one-out example combinations,
thinking budgets, and few-shot/zero-shot strategies, writing one prediction
file and one token-usage metadata file per experiment.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.nocr/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dataDir, "data", "", "data directory override (images, ground truth, prompt)",
	)
	rootCmd.PersistentFlags().StringVar(
		&resultsDir, "results", "", "results directory override",
	)

	rootCmd.AddCommand(runCmd, initCmd, versionCmd)
}
