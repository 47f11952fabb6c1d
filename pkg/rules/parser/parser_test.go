package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

const sampleDefinitions = `
verdict_version: "1"
policies:
  - id: fraud-listing
    name: Fraudulent listing detection
    status: draft
    rules:
      - id: low-trust
        name: Low seller trust
        field: seller.trust_score
        operator: less_than
        value: 20
        active: true
        conditions:
          - id: recent-account
            logical_operator: AND
            sub_conditions:
              - id: age
                field: seller.account_age_days
                operator: less_than
                value: 30
              - id: listings
                field: seller.listing_count
                operator: greater_than
                value: 10
    actions:
      - id: flag-listing
        type: flag
        active: true
        parameters:
          severity: high
          reason: suspected fraud
features:
  - key: instant-payout
    name: Instant payout
    rollout_strategy: percentage
    rollout_percentage: 25
    identifier_field: freelancer.id
`

func TestParser_ParseBytes(t *testing.T) {
	p := NewParser()

	file, err := p.ParseBytes([]byte(sampleDefinitions), "sample.yaml")
	if err != nil {
		t.Fatalf("ParseBytes error: %v", err)
	}

	if file.Version != "1" {
		t.Errorf("expected version 1, got %q", file.Version)
	}
	if len(file.Policies) != 1 || len(file.Features) != 1 {
		t.Fatalf("expected 1 policy and 1 feature, got %d and %d",
			len(file.Policies), len(file.Features))
	}

	policy := file.Policies[0]
	if policy.ID != "fraud-listing" || policy.Status != ast.StatusDraft {
		t.Errorf("unexpected policy: id=%s status=%s", policy.ID, policy.Status)
	}

	rule := policy.Rules[0]
	if rule.Operator != ast.OperatorLessThan {
		t.Errorf("unexpected operator %s", rule.Operator)
	}
	if len(rule.Conditions) != 1 || len(rule.Conditions[0].Children) != 2 {
		t.Error("condition tree not parsed")
	}

	feature := file.Features[0]
	if feature.Strategy != ast.RolloutPercentage || feature.Percentage != 25 {
		t.Errorf("unexpected feature: strategy=%s percentage=%d",
			feature.Strategy, feature.Percentage)
	}
	if feature.Identifier() != "freelancer.id" {
		t.Errorf("unexpected identifier field %q", feature.Identifier())
	}
}

func TestParser_InvalidYAML(t *testing.T) {
	p := NewParser()

	_, err := p.ParseBytes([]byte("policies:\n  - id: [broken"), "bad.yaml")
	if err == nil {
		t.Fatal("expected parse error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.File != "bad.yaml" {
		t.Errorf("expected source file in error, got %q", parseErr.File)
	}
}

func TestParser_DepthLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("policies:\n  - id: deep\n    status: draft\n    rules:\n      - id: r1\n        field: x\n        operator: equals\n        value: 1\n        conditions:\n")
	indent := "          "
	for i := 0; i < 5; i++ {
		sb.WriteString(indent + "- id: n\n")
		sb.WriteString(indent + "  sub_conditions:\n")
		indent += "    "
	}
	sb.WriteString(indent + "- id: leaf\n")
	sb.WriteString(indent + "  field: y\n")
	sb.WriteString(indent + "  operator: equals\n")
	sb.WriteString(indent + "  value: 2\n")

	p := NewParser().WithMaxDepth(3)
	if _, err := p.ParseBytes([]byte(sb.String()), "deep.yaml"); err == nil {
		t.Error("expected depth limit error")
	}

	p = NewParser().WithMaxDepth(10)
	if _, err := p.ParseBytes([]byte(sb.String()), "deep.yaml"); err != nil {
		t.Errorf("expected deep tree within limit to parse: %v", err)
	}
}

func TestParser_SizeLimit(t *testing.T) {
	p := NewParser().WithMaxFileSize(8)
	if _, err := p.ParseBytes([]byte(sampleDefinitions), "big.yaml"); err == nil {
		t.Error("expected size limit error")
	}
}

func TestParser_ParseDir(t *testing.T) {
	dir := t.TempDir()

	policies := "policies:\n  - id: p1\n    status: draft\n"
	features := "features:\n  - key: f1\n    rollout_strategy: immediate\n"
	if err := os.WriteFile(filepath.Join(dir, "01-policies.yaml"), []byte(policies), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "02-features.yml"), []byte(features), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewParser()
	file, err := p.ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir error: %v", err)
	}
	if len(file.Policies) != 1 || len(file.Features) != 1 {
		t.Errorf("expected merged definitions, got %d policies and %d features",
			len(file.Policies), len(file.Features))
	}
}
