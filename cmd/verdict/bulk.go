package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/offerhub/verdict/pkg/batch"
	"github.com/offerhub/verdict/pkg/cli"
	"github.com/offerhub/verdict/pkg/rules/registry"
	"github.com/offerhub/verdict/pkg/rules/source"
)

var bulkFlags struct {
	definitions string
	operation   string
	targets     []string
	targetsFile string
	actor       string
	workers     int
	format      string
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Apply a lifecycle operation to many definitions at once",
	Long: `Bulk applies one lifecycle operation to a list of policy ids or feature
keys. Each target is processed in isolation: a failing target never aborts
the rest of the batch.

Supported operations:
  activate, deactivate, suspend, deprecate   (policies)
  enable, disable                            (features)

Targets come from repeated --target flags or from a file with one id per
line.

Examples:
  # Activate two policies
  verdict bulk --definitions defs/ --operation activate --target p1 --target p2

  # Disable every feature listed in a file, eight at a time
  verdict bulk --definitions defs/ --operation disable --targets-file keys.txt --workers 8`,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().StringVarP(&bulkFlags.definitions, "definitions", "D", "", "definition file or directory (required)")
	bulkCmd.Flags().StringVarP(&bulkFlags.operation, "operation", "o", "", "operation to apply (required)")
	bulkCmd.Flags().StringArrayVarP(&bulkFlags.targets, "target", "t", nil, "target id (repeatable)")
	bulkCmd.Flags().StringVar(&bulkFlags.targetsFile, "targets-file", "", "file with one target id per line")
	bulkCmd.Flags().StringVar(&bulkFlags.actor, "actor", "cli", "actor recorded in the audit trail")
	bulkCmd.Flags().IntVar(&bulkFlags.workers, "workers", 1, "parallel workers (1 = sequential)")
	bulkCmd.Flags().StringVar(&bulkFlags.format, "format", "text", "output format: text, json")

	bulkCmd.MarkFlagRequired("definitions")
	bulkCmd.MarkFlagRequired("operation")
}

func runBulk(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(bulkFlags.format)
	if err != nil {
		return err
	}

	targets := append([]string(nil), bulkFlags.targets...)
	if bulkFlags.targetsFile != "" {
		fromFile, err := readTargets(bulkFlags.targetsFile)
		if err != nil {
			return err
		}
		targets = append(targets, fromFile...)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets specified")
	}

	reg := registry.New()
	if err := source.NewFileSource(bulkFlags.definitions).Load(reg, bulkFlags.actor); err != nil {
		return cli.NewCommandError("bulk", err)
	}

	handler, err := registryHandler(reg)
	if err != nil {
		return err
	}

	// Progress goes to stderr in text mode; JSON output stays clean for
	// piping.
	var progress *cli.Progress
	if format == cli.FormatText {
		progress = cli.NewProgress(os.Stderr, len(targets))
		handler = trackingHandler(handler, progress)
	}

	var executor batch.Executor
	if bulkFlags.workers > 1 {
		executor = batch.NewPoolExecutor(handler, batch.WithWorkers(bulkFlags.workers))
	} else {
		executor = batch.NewSequentialExecutor(handler)
	}

	summary, err := executor.Execute(cli.SetupSignalHandler(), &batch.Request{
		Operation: bulkFlags.operation,
		TargetIDs: targets,
		Actor:     bulkFlags.actor,
	})
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return cli.NewCommandError("bulk", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, summary)
	}
	printSummary(summary)

	if !summary.Success {
		return cli.NewCommandError("bulk", fmt.Errorf("no target succeeded"))
	}
	return nil
}

// registryHandler maps the supported bulk operations onto registry
// lifecycle calls.
func registryHandler(reg *registry.Registry) (batch.Handler, error) {
	switch bulkFlags.operation {
	case "activate", "deactivate", "suspend", "deprecate", "enable", "disable":
	default:
		return nil, fmt.Errorf("unknown operation %q", bulkFlags.operation)
	}

	return batch.HandlerFunc(func(ctx context.Context, operation, targetID string, params map[string]any) error {
		var err error
		switch operation {
		case "activate":
			err = reg.ActivatePolicy(targetID, bulkFlags.actor)
		case "deactivate":
			err = reg.DeactivatePolicy(targetID, bulkFlags.actor)
		case "suspend":
			err = reg.SuspendPolicy(targetID, bulkFlags.actor)
		case "deprecate":
			err = reg.DeprecatePolicy(targetID, bulkFlags.actor)
		case "enable":
			err = reg.EnableFeature(targetID, bulkFlags.actor)
		case "disable":
			err = reg.DisableFeature(targetID, bulkFlags.actor)
		}
		if err != nil && registry.IsNotFound(err) {
			return batch.ErrNotFound
		}
		return err
	}), nil
}

// trackingHandler advances the progress bar after each target, whatever
// its outcome.
func trackingHandler(inner batch.Handler, progress *cli.Progress) batch.Handler {
	return batch.HandlerFunc(func(ctx context.Context, operation, targetID string, params map[string]any) error {
		err := inner.Apply(ctx, operation, targetID, params)
		progress.Increment()
		return err
	})
}

func readTargets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file %q: %w", path, err)
	}

	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, nil
}

func printSummary(s *batch.Summary) {
	fmt.Printf("Batch %s (%s)\n", s.BatchID, s.Operation)
	fmt.Printf("  %d total, %d successful, %d failed, %d skipped\n",
		s.Total, s.Successful, s.Failed, s.Skipped)

	for _, item := range s.Items {
		if item.Status == batch.StatusSuccess {
			continue
		}
		fmt.Printf("  %s: %s", item.TargetID, item.Status)
		if item.Error != "" {
			fmt.Printf(" (%s)", item.Error)
		}
		fmt.Println()
	}
}
