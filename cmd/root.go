/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"talewire/pkg/config"
	"talewire/pkg/logger"
	"talewire/pkg/pipeline"
	"talewire/pkg/router"
	"talewire/pkg/store"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "talewire",
	Short: "File-backed message routing for narrative pipelines",
	Long: "Talewire routes envelopes between the stages of an interactive " +
		"narrative pipeline through durable, slot-partitioned JSON documents.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newDriver loads config, installs the logger, and wires a pipeline driver.
func newDriver() (*pipeline.Driver, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(appLogger)

	st, err := store.New(cfg.Data.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("open data root: %w", err)
	}

	return pipeline.NewDriver(st, router.New(appLogger), appLogger), cfg, nil
}
