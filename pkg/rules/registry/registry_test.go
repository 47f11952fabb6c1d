package registry

import (
	"context"
	"testing"

	"github.com/offerhub/verdict/pkg/audit"
	auditstorage "github.com/offerhub/verdict/pkg/audit/storage"
	"github.com/offerhub/verdict/pkg/rules/ast"
)

func draftPolicy(id string) *ast.Policy {
	return &ast.Policy{
		ID:   id,
		Name: "Policy " + id,
		Rules: []*ast.Rule{
			{
				ID:       id + "-r1",
				Name:     "spam score high",
				Field:    "listing.spam_score",
				Operator: ast.OperatorGreaterThan,
				Value:    0.8,
				Active:   true,
			},
		},
		Actions: []*ast.Action{
			{
				ID:     id + "-a1",
				Type:   ast.ActionTypeFlag,
				Active: true,
				Parameters: map[string]any{
					"severity": "high",
					"reason":   "spam",
				},
			},
		},
	}
}

func TestRegistry_SavePolicy(t *testing.T) {
	r := New()

	if err := r.SavePolicy(draftPolicy("p1"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}

	got, ok := r.PolicyByID("p1")
	if !ok {
		t.Fatal("policy not found after save")
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
	if got.Status != ast.StatusDraft {
		t.Errorf("expected draft status, got %s", got.Status)
	}

	// Replacing bumps the version.
	updated := draftPolicy("p1")
	updated.Description = "second revision"
	if err := r.SavePolicy(updated, "admin"); err != nil {
		t.Fatalf("SavePolicy update error: %v", err)
	}
	got, _ = r.PolicyByID("p1")
	if got.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", got.Version)
	}
}

func TestRegistry_SavePolicyRejectsInvalid(t *testing.T) {
	r := New()

	tests := []struct {
		name   string
		policy *ast.Policy
	}{
		{"nil policy", nil},
		{"empty id", &ast.Policy{Name: "no id"}},
		{
			"unknown operator",
			&ast.Policy{
				ID: "bad-op",
				Rules: []*ast.Rule{
					{ID: "r1", Field: "x", Operator: "approximately", Value: 1},
				},
			},
		},
		{
			"invalid regex",
			&ast.Policy{
				ID: "bad-re",
				Rules: []*ast.Rule{
					{ID: "r1", Field: "x", Operator: ast.OperatorRegexMatch, Value: "("},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.SavePolicy(tt.policy, "admin"); err == nil {
				t.Error("expected save to be rejected")
			}
		})
	}
}

func TestRegistry_ActivatePolicy(t *testing.T) {
	r := New()

	if err := r.SavePolicy(draftPolicy("p1"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	if err := r.ActivatePolicy("p1", "admin"); err != nil {
		t.Fatalf("ActivatePolicy error: %v", err)
	}

	got, _ := r.PolicyByID("p1")
	if !got.IsActive() {
		t.Error("expected policy to be active")
	}
	if got.Version != 2 {
		t.Errorf("expected version bump on activation, got %d", got.Version)
	}

	if len(r.ActivePolicies()) != 1 {
		t.Errorf("expected 1 active policy, got %d", len(r.ActivePolicies()))
	}
}

func TestRegistry_ActivationPrerequisiteGate(t *testing.T) {
	r := New()

	dependent := draftPolicy("dependent")
	dependent.Dependencies = []*ast.Dependency{
		{PolicyID: "dependent", DependsOn: "base", Type: ast.DependencyPrerequisite},
	}
	if err := r.SavePolicy(dependent, "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}

	// Prerequisite does not exist yet.
	if err := r.ActivatePolicy("dependent", "admin"); err == nil {
		t.Fatal("expected activation to fail with missing prerequisite")
	}

	// Prerequisite exists but is inactive.
	if err := r.SavePolicy(draftPolicy("base"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	if err := r.ActivatePolicy("dependent", "admin"); err == nil {
		t.Fatal("expected activation to fail with inactive prerequisite")
	}

	// Activate the prerequisite first, then the dependent.
	if err := r.ActivatePolicy("base", "admin"); err != nil {
		t.Fatalf("ActivatePolicy(base) error: %v", err)
	}
	if err := r.ActivatePolicy("dependent", "admin"); err != nil {
		t.Errorf("ActivatePolicy(dependent) error: %v", err)
	}
}

func TestRegistry_ActivationConflictGate(t *testing.T) {
	r := New()

	if err := r.SavePolicy(draftPolicy("strict"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	if err := r.ActivatePolicy("strict", "admin"); err != nil {
		t.Fatalf("ActivatePolicy error: %v", err)
	}

	lenient := draftPolicy("lenient")
	lenient.Dependencies = []*ast.Dependency{
		{PolicyID: "lenient", DependsOn: "strict", Type: ast.DependencyConflict},
	}
	if err := r.SavePolicy(lenient, "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}

	if err := r.ActivatePolicy("lenient", "admin"); err == nil {
		t.Fatal("expected activation to fail while conflicting policy is active")
	}

	if err := r.DeactivatePolicy("strict", "admin"); err != nil {
		t.Fatalf("DeactivatePolicy error: %v", err)
	}
	if err := r.ActivatePolicy("lenient", "admin"); err != nil {
		t.Errorf("ActivatePolicy after deactivating conflict: %v", err)
	}
}

func TestRegistry_DeprecateGuardsDependents(t *testing.T) {
	r := New()

	base := draftPolicy("base")
	dependent := draftPolicy("dependent")
	dependent.Dependencies = []*ast.Dependency{
		{PolicyID: "dependent", DependsOn: "base", Type: ast.DependencyPrerequisite},
	}
	for _, p := range []*ast.Policy{base, dependent} {
		if err := r.SavePolicy(p, "admin"); err != nil {
			t.Fatalf("SavePolicy error: %v", err)
		}
	}

	if err := r.DeprecatePolicy("base", "admin"); err == nil {
		t.Error("expected deprecation to be refused while a dependent exists")
	}

	if err := r.DeprecatePolicy("dependent", "admin"); err != nil {
		t.Fatalf("DeprecatePolicy(dependent) error: %v", err)
	}
	if err := r.DeprecatePolicy("base", "admin"); err != nil {
		t.Errorf("DeprecatePolicy(base) error: %v", err)
	}

	// Deprecated policies are terminal.
	if err := r.ActivatePolicy("base", "admin"); err == nil {
		t.Error("expected reactivation of a deprecated policy to fail")
	}
}

func TestRegistry_ReadsReturnClones(t *testing.T) {
	r := New()
	if err := r.SavePolicy(draftPolicy("p1"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}

	got, _ := r.PolicyByID("p1")
	got.Rules[0].Field = "tampered"

	again, _ := r.PolicyByID("p1")
	if again.Rules[0].Field != "listing.spam_score" {
		t.Error("mutation through a read leaked into the registry")
	}
}

func TestRegistry_FingerprintChangesOnMutation(t *testing.T) {
	r := New()
	if err := r.SavePolicy(draftPolicy("p1"), "admin"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	before := r.Fingerprint()

	if err := r.ActivatePolicy("p1", "admin"); err != nil {
		t.Fatalf("ActivatePolicy error: %v", err)
	}
	if r.Fingerprint() == before {
		t.Error("fingerprint unchanged after mutation")
	}
}

func TestRegistry_AuditTrail(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	recorder := audit.NewRecorder(storage, nil)
	r := New(WithRecorder(recorder))

	if err := r.SavePolicy(draftPolicy("p1"), "moderator-3"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	if err := r.ActivatePolicy("p1", "moderator-3"); err != nil {
		t.Fatalf("ActivatePolicy error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("recorder Close error: %v", err)
	}

	records, err := storage.List(context.Background(), &audit.Query{EntityID: "p1"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(records))
	}

	actions := map[string]bool{}
	for _, rec := range records {
		actions[rec.Action] = true
		if rec.Actor != "moderator-3" {
			t.Errorf("unexpected actor %q", rec.Actor)
		}
	}
	if !actions[audit.ActionCreated] || !actions[audit.ActionActivated] {
		t.Errorf("missing expected actions, got %v", actions)
	}
}
