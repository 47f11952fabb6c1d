package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/offerhub/verdict/pkg/cli"
	"github.com/offerhub/verdict/pkg/harness"
	"github.com/offerhub/verdict/pkg/rules/engine"
	"github.com/offerhub/verdict/pkg/rules/registry"
	"github.com/offerhub/verdict/pkg/rules/source"
)

var simulateFlags struct {
	definitions string
	policy      string
	feature     string
	contextFile string
	environment string
	format      string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a policy or feature toggle against a context",
	Long: `Simulate evaluates a stored policy or feature toggle against a sample
context without touching the audit trail.

Definitions are loaded from the given file or directory, then the named
policy or feature is evaluated against the context file. The context file
is a YAML (or JSON) mapping of field paths to values:

  user:
    id: u-123
    country: DE
  listing:
    spam_score: 0.93

Examples:
  # Simulate a policy
  verdict simulate --definitions defs/ --policy spam-screening --context ctx.yaml

  # Simulate a feature toggle
  verdict simulate --definitions defs/ --feature new-search --context ctx.yaml

  # JSON output
  verdict simulate --definitions defs/ --policy spam-screening --context ctx.yaml --format json`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFlags.definitions, "definitions", "D", "", "definition file or directory (required)")
	simulateCmd.Flags().StringVarP(&simulateFlags.policy, "policy", "p", "", "policy id to simulate")
	simulateCmd.Flags().StringVarP(&simulateFlags.feature, "feature", "F", "", "feature key to simulate")
	simulateCmd.Flags().StringVar(&simulateFlags.contextFile, "context", "", "context file (YAML or JSON, required)")
	simulateCmd.Flags().StringVarP(&simulateFlags.environment, "environment", "e", "production", "evaluation environment")
	simulateCmd.Flags().StringVar(&simulateFlags.format, "format", "text", "output format: text, json")

	simulateCmd.MarkFlagRequired("definitions")
	simulateCmd.MarkFlagRequired("context")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if (simulateFlags.policy == "") == (simulateFlags.feature == "") {
		return fmt.Errorf("exactly one of --policy or --feature must be specified")
	}

	format, err := cli.ParseFormat(simulateFlags.format)
	if err != nil {
		return err
	}

	evalCtx, err := loadContext(simulateFlags.contextFile)
	if err != nil {
		return err
	}

	reg := registry.New()
	if err := source.NewFileSource(simulateFlags.definitions).Load(reg, "cli"); err != nil {
		return cli.NewCommandError("simulate", err)
	}

	eng := engine.New(
		engine.WithEnvironment(simulateFlags.environment),
		engine.WithFeatureSource(reg),
	)
	session := harness.NewSession(eng,
		harness.WithPolicyProvider(reg),
		harness.WithFeatureProvider(reg),
	)

	formatter := cli.NewFormatter(format)

	if simulateFlags.policy != "" {
		verdict := session.SimulatePolicy(simulateFlags.policy, evalCtx)
		if format == cli.FormatJSON {
			return formatter.FormatTo(os.Stdout, verdict)
		}
		printVerdict(verdict)
		return nil
	}

	decision := session.SimulateFeature(simulateFlags.feature, evalCtx)
	if format == cli.FormatJSON {
		return formatter.FormatTo(os.Stdout, decision)
	}
	printDecision(decision)
	return nil
}

func loadContext(path string) (engine.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file %q: %w", path, err)
	}

	var ctx map[string]any
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file %q: %w", path, err)
	}
	return engine.Context(ctx), nil
}

func printVerdict(v *engine.Verdict) {
	fmt.Printf("Policy: %s (version %d)\n", v.PolicyID, v.PolicyVersion)
	fmt.Printf("Triggered: %t\n", v.Triggered)
	fmt.Printf("Reason: %s\n", v.Reason)

	if violations := v.Violations(); len(violations) > 0 {
		fmt.Println("Violations:")
		for _, violation := range violations {
			fmt.Printf("  - %s\n", violation)
		}
	}
	if len(v.ExecutedActions) > 0 {
		fmt.Println("Actions:")
		for _, action := range v.ExecutedActions {
			fmt.Printf("  %d. %s (%s)\n", action.Order, action.ActionID, action.Type)
		}
	}
	for _, diag := range v.Diagnostics {
		fmt.Printf("Diagnostic: [%s] %s\n", diag.Code, diag.Message)
	}
	fmt.Printf("Evaluation time: %.3fms\n", v.EvaluationTimeMs)
}

func printDecision(d *engine.FeatureDecision) {
	fmt.Printf("Feature: %s (version %d)\n", d.FeatureKey, d.FeatureVersion)
	fmt.Printf("Enabled: %t\n", d.Enabled)
	fmt.Printf("Reason: %s\n", d.Reason)

	for _, diag := range d.Diagnostics {
		fmt.Printf("Diagnostic: [%s] %s\n", diag.Code, diag.Message)
	}
	fmt.Printf("Evaluation time: %.3fms\n", d.EvaluationTimeMs)
}
