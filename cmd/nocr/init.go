package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rijpm101/nocr/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
