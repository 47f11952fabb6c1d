package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/offerhub/verdict/pkg/config"
	"github.com/offerhub/verdict/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Verdict - policy and feature toggle evaluation engine",
	Long: `Verdict is a rule-based policy and feature toggle evaluation engine.

It evaluates declarative policy definitions against runtime contexts,
providing:
  - Condition-tree rule evaluation with a rich operator library
  - Deterministic percentage-based feature rollouts
  - Dependency and conflict validation at activation time
  - Simulation of definitions against sample contexts
  - An immutable audit trail of definition changes and evaluations

For more information, visit: https://github.com/offerhub/verdict`,
	Version:           Version,
	PersistentPreRunE: setupLogging,
}

// setupLogging builds the default logger from the config file when one is
// present. A missing default config file is not an error; defaults apply.
func setupLogging(cmd *cobra.Command, args []string) error {
	logCfg := config.LoggingConfig{
		Level:  config.DefaultLogLevel,
		Format: config.DefaultLogFormat,
	}
	if cfg, err := config.LoadConfigWithEnvOverrides(cfgFile); err == nil {
		logCfg = cfg.Telemetry.Logging
	} else if cmd.Flags().Changed("config") {
		return err
	}
	if verbose {
		logCfg.Level = "debug"
	}

	logger, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
