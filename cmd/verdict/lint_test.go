package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefinitionFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "definitions.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write definition file: %v", err)
	}
	return path
}

func TestLintFile_Valid(t *testing.T) {
	path := writeDefinitionFile(t, `
verdict_version: "1"
policies:
  - id: spam-screening
    name: Spam screening
    status: draft
    rules:
      - id: r1
        field: listing.spam_score
        operator: greater_than
        value: 0.8
        active: true
    actions:
      - id: a1
        type: flag
        active: true
        parameters:
          severity: high
          reason: spam
features:
  - key: new-search
    rollout_strategy: percentage
    rollout_percentage: 25
`)

	result := lintFile(path)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors %v", result.Errors)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("expected no findings, got %+v", result)
	}
}

func TestLintFile_ParseError(t *testing.T) {
	path := writeDefinitionFile(t, "policies: [broken\n")

	result := lintFile(path)
	if result.Valid {
		t.Fatal("expected invalid result for malformed YAML")
	}
	if len(result.Errors) == 0 || result.Errors[0].Type != "parse" {
		t.Errorf("expected a parse error, got %+v", result.Errors)
	}
}

func TestLintFile_ValidationErrors(t *testing.T) {
	path := writeDefinitionFile(t, `
verdict_version: "1"
policies:
  - id: broken
    name: Broken
    status: draft
    rules:
      - id: r1
        field: listing.title
        operator: regex_match
        value: "[unclosed"
        active: true
features:
  - key: over-range
    rollout_strategy: percentage
    rollout_percentage: 150
`)

	result := lintFile(path)
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	entities := make(map[string]bool)
	for _, finding := range result.Errors {
		entities[finding.Entity] = true
	}
	if !entities["policy broken"] {
		t.Errorf("expected a policy finding, got %+v", result.Errors)
	}
	if !entities["feature over-range"] {
		t.Errorf("expected a feature finding, got %+v", result.Errors)
	}
}

func TestLintFile_Warnings(t *testing.T) {
	path := writeDefinitionFile(t, `
verdict_version: "1"
policies:
  - id: contradictory
    name: Contradictory
    status: draft
    rules:
      - id: r1
        field: seller.tier
        operator: equals
        value: gold
        active: true
      - id: r2
        field: seller.tier
        operator: not_equals
        value: gold
        active: true
`)

	result := lintFile(path)
	if !result.Valid {
		t.Fatalf("warnings must not invalidate the file: %+v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a rule conflict warning")
	}
}
