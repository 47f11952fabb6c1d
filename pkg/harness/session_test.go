package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/offerhub/verdict/pkg/history"
	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/engine"
	"github.com/offerhub/verdict/pkg/rules/registry"
)

func draftSpamPolicy() *ast.Policy {
	return &ast.Policy{
		ID:   "spam-listing",
		Name: "Spam listing detection",
		Rules: []*ast.Rule{
			{
				ID:       "high-score",
				Name:     "High spam score",
				Field:    "listing.spam_score",
				Operator: ast.OperatorGreaterThan,
				Value:    0.8,
				Active:   true,
			},
		},
		Actions: []*ast.Action{
			{
				ID:     "flag",
				Type:   ast.ActionTypeFlag,
				Active: true,
				Parameters: map[string]any{
					"severity": "medium",
					"reason":   "spam score",
				},
			},
		},
	}
}

func TestSession_SimulateDraftPolicy(t *testing.T) {
	eng := engine.New()
	reg := registry.New()
	if err := reg.SavePolicy(draftSpamPolicy(), "tester"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}

	s := NewSession(eng, WithPolicyProvider(reg))

	// The stored policy is still a draft; simulation evaluates it anyway.
	verdict := s.SimulatePolicy("spam-listing", engine.Context{
		"listing": map[string]any{"spam_score": 0.95},
	})
	if !verdict.Triggered {
		t.Errorf("expected draft policy to trigger in simulation, reason %s", verdict.Reason)
	}

	verdict = s.SimulatePolicy("spam-listing", engine.Context{
		"listing": map[string]any{"spam_score": 0.1},
	})
	if verdict.Triggered {
		t.Error("expected low score not to trigger")
	}
}

func TestSession_SimulateUnknownPolicy(t *testing.T) {
	s := NewSession(engine.New(), WithPolicyProvider(registry.New()))

	verdict := s.SimulatePolicy("missing", engine.Context{})
	if verdict.Triggered {
		t.Error("unknown policy must not trigger")
	}
	if verdict.Reason != engine.ReasonPolicyUnresolved {
		t.Errorf("expected unresolved reason, got %s", verdict.Reason)
	}
}

func TestSession_SimulateFeature(t *testing.T) {
	reg := registry.New()
	feature := &ast.FeatureToggle{
		ID:       "instant-payout",
		Key:      "instant-payout",
		Strategy: ast.RolloutPercentage,
		// Disabled in the registry; simulation forces it on.
		Active:     false,
		Percentage: 100,
	}
	if err := reg.SaveFeature(feature, "tester"); err != nil {
		t.Fatalf("SaveFeature error: %v", err)
	}

	s := NewSession(engine.New(), WithFeatureProvider(reg))
	decision := s.SimulateFeature("instant-payout", engine.Context{
		"user": map[string]any{"id": "u-1"},
	})
	if !decision.Enabled {
		t.Errorf("expected 100%% rollout to enable, reason %s", decision.Reason)
	}
}

func TestSession_RunRing(t *testing.T) {
	s := NewSession(engine.New(), WithRunCapacity(3))
	policy := draftSpamPolicy()

	for i := 0; i < 5; i++ {
		s.SimulateDraft(policy, engine.Context{
			"listing": map[string]any{"spam_score": float64(i)},
		})
	}

	runs := s.Runs()
	if len(runs) != 3 {
		t.Fatalf("expected 3 retained runs, got %d", len(runs))
	}
	// Newest first: the last simulated context had spam_score 4.
	listing := runs[0].Input["listing"].(map[string]any)
	if listing["spam_score"] != float64(4) {
		t.Errorf("expected newest run first, got %v", listing["spam_score"])
	}

	s.Clear()
	if len(s.Runs()) != 0 {
		t.Error("expected no runs after Clear")
	}
}

func TestSession_SimulateMany(t *testing.T) {
	reg := registry.New()
	if err := reg.SavePolicy(draftSpamPolicy(), "tester"); err != nil {
		t.Fatalf("SavePolicy error: %v", err)
	}
	s := NewSession(engine.New(), WithPolicyProvider(reg))

	contexts := make([]engine.Context, 4)
	for i := range contexts {
		contexts[i] = engine.Context{
			"listing": map[string]any{"spam_score": float64(i)},
		}
	}

	verdicts := s.SimulateMany("spam-listing", contexts)
	if len(verdicts) != 4 {
		t.Fatalf("expected 4 verdicts, got %d", len(verdicts))
	}
	// Scores 0 and below threshold 0.8 fail, 1..3 pass.
	for i, v := range verdicts {
		wantTriggered := float64(i) > 0.8
		if v.Triggered != wantTriggered {
			t.Errorf("context %d: triggered=%v, want %v", i, v.Triggered, wantTriggered)
		}
	}
}

func TestSession_DraftNotMutated(t *testing.T) {
	s := NewSession(engine.New())
	policy := draftSpamPolicy()
	policy.Status = ast.StatusDraft

	s.SimulateDraft(policy, engine.Context{})

	if policy.Status != ast.StatusDraft || policy.Active {
		t.Errorf("simulation mutated the draft: status=%s active=%v",
			policy.Status, policy.Active)
	}
}

func TestSession_PersistsRunsToHistory(t *testing.T) {
	store := history.NewMemoryStore()
	s := NewSession(engine.New(), WithHistory(store))

	s.SimulateDraft(draftSpamPolicy(), engine.Context{
		"listing": map[string]any{"spam_score": 0.9},
	})
	s.SimulateFeatureDraft(&ast.FeatureToggle{
		Key:      "new-search",
		Strategy: ast.RolloutImmediate,
	}, engine.Context{"user": map[string]any{"id": "u1"}})

	ctx := context.Background()
	policies, err := store.List(ctx, &history.Query{Kind: history.KindPolicy})
	if err != nil {
		t.Fatalf("list policy runs: %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("got %d policy runs, want 1", len(policies))
	}
	if !policies[0].Outcome || policies[0].SubjectID != "spam-listing" {
		t.Errorf("policy run = %+v", policies[0])
	}

	features, err := store.List(ctx, &history.Query{Kind: history.KindFeature})
	if err != nil {
		t.Fatalf("list feature runs: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("got %d feature runs, want 1", len(features))
	}
	if features[0].SubjectID != "new-search" {
		t.Errorf("feature run subject = %q", features[0].SubjectID)
	}
}

func ExampleSession_SimulateDraft() {
	s := NewSession(engine.New())
	verdict := s.SimulateDraft(draftSpamPolicy(), engine.Context{
		"listing": map[string]any{"spam_score": 0.9},
	})
	fmt.Println(verdict.Triggered, verdict.Reason)
	// Output: true policy_triggered
}
