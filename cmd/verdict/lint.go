package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/offerhub/verdict/pkg/cli"
	verrors "github.com/offerhub/verdict/pkg/rules/errors"
	"github.com/offerhub/verdict/pkg/rules/parser"
	"github.com/offerhub/verdict/pkg/rules/validator"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate definition files",
	Long: `Validate Verdict definition files for syntax and semantic errors.

The lint command parses definition files and runs the full validation
passes:
  - YAML syntax validation
  - Policy structure validation (operators, condition trees, actions)
  - Rule conflict scanning (reported as warnings)
  - Feature toggle validation (strategies, rollout percentages, audiences)

Examples:
  # Lint a single file
  verdict lint --file definitions.yaml

  # Lint a directory
  verdict lint --dir definitions/

  # Strict mode (warnings as errors)
  verdict lint --file definitions.yaml --strict

  # JSON output for CI/CD
  verdict lint --file definitions.yaml --format json`,
	RunE: lintDefinitions,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "definition file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of definition files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintDefinitions(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list definition files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no definition files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file))
	}

	if format == cli.FormatJSON {
		return outputJSON(results)
	}
	return outputText(results, lintFlags.strict)
}

// LintResult represents the validation result for a single definition file.
type LintResult struct {
	File     string        `json:"file"`
	Valid    bool          `json:"valid"`
	Errors   []LintFinding `json:"errors,omitempty"`
	Warnings []LintFinding `json:"warnings,omitempty"`
}

// LintFinding represents a single validation error or warning.
type LintFinding struct {
	Entity   string `json:"entity,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Type     string `json:"type,omitempty"`
}

func lintFile(path string) LintResult {
	result := LintResult{
		File:  path,
		Valid: true,
	}

	file, err := parser.NewParser().Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, LintFinding{
			Message:  err.Error(),
			Severity: "error",
			Type:     "parse",
		})
		return result
	}

	v := validator.New()

	for _, policy := range file.Policies {
		collectFindings(&result, "policy "+policy.ID, v.ValidatePolicy(policy))
	}
	for _, feature := range file.Features {
		collectFindings(&result, "feature "+feature.Key, v.ValidateFeature(feature))
	}

	return result
}

func collectFindings(result *LintResult, entity string, list *verrors.List) {
	for _, e := range list.Errors {
		finding := LintFinding{
			Entity:   entity,
			Code:     e.Code,
			Message:  e.Message,
			Severity: string(e.Severity),
			Type:     string(e.Type),
		}
		if e.IsBlocking() {
			result.Valid = false
			result.Errors = append(result.Errors, finding)
		} else {
			result.Warnings = append(result.Warnings, finding)
		}
	}
}

func outputText(results []LintResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ All definitions valid")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Entity != "" {
				fmt.Printf(" (%s)", err.Entity)
			}
			if err.Code != "" {
				fmt.Printf(" [%s]", err.Code)
			}
			fmt.Println()
			totalErrors++
		}

		for _, warn := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", warn.Message)
			if warn.Entity != "" {
				fmt.Printf(" (%s)", warn.Entity)
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputJSON(results []LintResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
