package engine

import (
	"fmt"
	"testing"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// mapSource is a FeatureSource over a plain map for tests.
type mapSource map[string]*ast.FeatureToggle

func (m mapSource) FeatureByKey(key string) (*ast.FeatureToggle, bool) {
	f, ok := m[key]
	return f, ok
}

func userContext(id string) Context {
	return Context{"user": map[string]any{"id": id}}
}

func TestEvaluateFeature_Immediate(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:      "new-dashboard",
		Active:   true,
		Strategy: ast.RolloutImmediate,
	}
	decision := e.EvaluateFeature(feature, Context{})
	if !decision.Enabled || decision.Reason != ReasonRolloutImmediate {
		t.Errorf("immediate strategy: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}

	feature.Active = false
	decision = e.EvaluateFeature(feature, Context{})
	if decision.Enabled || decision.Reason != ReasonFeatureInactive {
		t.Errorf("inactive toggle: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
}

func TestEvaluateFeature_Percentage(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:        "instant-payout",
		Active:     true,
		Strategy:   ast.RolloutPercentage,
		Percentage: 50,
	}

	// The decision for one identifier is stable and matches the bucket.
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("user-%d", i)
		decision := e.EvaluateFeature(feature, userContext(id))
		want := InRollout("instant-payout", id, 50)
		if decision.Enabled != want {
			t.Fatalf("identifier %s: enabled=%v, bucket says %v", id, decision.Enabled, want)
		}
		wantVariant := VariantControl
		if want {
			wantVariant = VariantTreatment
		}
		if decision.Variant != wantVariant {
			t.Errorf("identifier %s: variant=%s, want %s", id, decision.Variant, wantVariant)
		}
	}
}

func TestEvaluateFeature_MissingIdentifierFailsClosed(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:        "instant-payout",
		Active:     true,
		Strategy:   ast.RolloutPercentage,
		Percentage: 100,
	}

	tests := []struct {
		name string
		ctx  Context
	}{
		{"no user object", Context{}},
		{"no id field", Context{"user": map[string]any{"name": "ana"}}},
		{"empty id", userContext("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := e.EvaluateFeature(feature, tt.ctx)
			if decision.Enabled {
				t.Error("missing identifier must fail closed even at 100%")
			}
			if decision.Reason != ReasonMissingIdentifier {
				t.Errorf("unexpected reason %s", decision.Reason)
			}
		})
	}
}

func TestEvaluateFeature_CustomIdentifierField(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:             "priority-support",
		Active:          true,
		Strategy:        ast.RolloutPercentage,
		Percentage:      100,
		IdentifierField: "client.org_id",
	}

	decision := e.EvaluateFeature(feature, Context{
		"client": map[string]any{"org_id": "org-77"},
	})
	if !decision.Enabled {
		t.Errorf("expected custom identifier to resolve, reason %s", decision.Reason)
	}
}

func TestEvaluateFeature_Audience(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:      "beta-tools",
		Active:   true,
		Strategy: ast.RolloutUserGroup,
		Audience: &ast.TargetAudience{
			Criteria: leaf("user.tier", ast.OperatorInList, []any{"gold", "platinum"}),
		},
	}

	decision := e.EvaluateFeature(feature, Context{
		"user": map[string]any{"tier": "gold"},
	})
	if !decision.Enabled || decision.Reason != ReasonAudienceMatch {
		t.Errorf("gold tier: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}

	decision = e.EvaluateFeature(feature, Context{
		"user": map[string]any{"tier": "bronze"},
	})
	if decision.Enabled || decision.Reason != ReasonAudienceNoMatch {
		t.Errorf("bronze tier: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
}

func TestEvaluateFeature_EnvironmentMismatch(t *testing.T) {
	e := New(WithEnvironment("production"))

	feature := &ast.FeatureToggle{
		Key:         "staging-only",
		Active:      true,
		Strategy:    ast.RolloutImmediate,
		Environment: "staging",
	}
	decision := e.EvaluateFeature(feature, Context{})
	if decision.Enabled || decision.Reason != ReasonEnvironmentMismatch {
		t.Errorf("environment mismatch: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}

	// A toggle without an environment applies everywhere.
	feature.Environment = ""
	if !e.EvaluateFeature(feature, Context{}).Enabled {
		t.Error("environment-less toggle must evaluate normally")
	}
}

func TestEvaluateFeature_Conditions(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:      "instant-payout",
		Active:   true,
		Strategy: ast.RolloutImmediate,
		Conditions: []*ast.ConditionNode{
			leaf("user.kyc_complete", ast.OperatorEquals, true),
		},
	}

	decision := e.EvaluateFeature(feature, Context{
		"user": map[string]any{"kyc_complete": false},
	})
	if decision.Enabled || decision.Reason != ReasonConditionsNotMet {
		t.Errorf("failed condition: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
}

func TestEvaluateFeature_Dependencies(t *testing.T) {
	source := mapSource{
		"payments-v2": {
			Key:      "payments-v2",
			Active:   true,
			Strategy: ast.RolloutImmediate,
		},
	}
	e := New(WithFeatureSource(source))

	feature := &ast.FeatureToggle{
		Key:          "instant-payout",
		Active:       true,
		Strategy:     ast.RolloutImmediate,
		Dependencies: []string{"payments-v2"},
	}
	if !e.EvaluateFeature(feature, Context{}).Enabled {
		t.Error("expected enabled with satisfied dependency")
	}

	// Disable the prerequisite: the dependent follows.
	source["payments-v2"].Active = false
	decision := e.EvaluateFeature(feature, Context{})
	if decision.Enabled || decision.Reason != ReasonDependencyNotMet {
		t.Errorf("unmet dependency: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}

	// Unknown prerequisite is unmet, not an error.
	feature.Dependencies = []string{"missing"}
	if e.EvaluateFeature(feature, Context{}).Enabled {
		t.Error("unknown dependency must disable the feature")
	}
}

func TestEvaluateFeature_CyclicDependencies(t *testing.T) {
	// a and b require each other; c requires itself through them.
	source := mapSource{
		"a": {
			Key:          "a",
			Active:       true,
			Strategy:     ast.RolloutImmediate,
			Dependencies: []string{"b"},
		},
		"b": {
			Key:          "b",
			Active:       true,
			Strategy:     ast.RolloutImmediate,
			Dependencies: []string{"a"},
		},
		"c": {
			Key:          "c",
			Active:       true,
			Strategy:     ast.RolloutImmediate,
			Dependencies: []string{"c"},
		},
	}
	e := New(WithFeatureSource(source))

	for _, key := range []string{"a", "b", "c"} {
		decision := e.EvaluateFeature(source[key], Context{})
		if decision.Enabled || decision.Reason != ReasonDependencyNotMet {
			t.Errorf("%s: enabled=%v reason=%s, want disabled with %s",
				key, decision.Enabled, decision.Reason, ReasonDependencyNotMet)
		}
	}

	// A cycle off to the side must not poison an acyclic chain evaluated
	// through the same engine.
	source["chain"] = &ast.FeatureToggle{
		Key:          "chain",
		Active:       true,
		Strategy:     ast.RolloutImmediate,
		Dependencies: []string{"base"},
	}
	source["base"] = &ast.FeatureToggle{
		Key:      "base",
		Active:   true,
		Strategy: ast.RolloutImmediate,
	}
	if !e.EvaluateFeature(source["chain"], Context{}).Enabled {
		t.Error("acyclic chain must still evaluate enabled")
	}
}

func TestEvaluateFeature_SharedDependencyDiamond(t *testing.T) {
	// left and right both require base; the shared prerequisite is not a
	// cycle and must not disable the top.
	source := mapSource{
		"base": {
			Key:      "base",
			Active:   true,
			Strategy: ast.RolloutImmediate,
		},
		"left": {
			Key:          "left",
			Active:       true,
			Strategy:     ast.RolloutImmediate,
			Dependencies: []string{"base"},
		},
		"right": {
			Key:          "right",
			Active:       true,
			Strategy:     ast.RolloutImmediate,
			Dependencies: []string{"base"},
		},
	}
	e := New(WithFeatureSource(source))

	top := &ast.FeatureToggle{
		Key:          "top",
		Active:       true,
		Strategy:     ast.RolloutImmediate,
		Dependencies: []string{"left", "right"},
	}
	decision := e.EvaluateFeature(top, Context{})
	if !decision.Enabled {
		t.Errorf("diamond dependencies: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
}

func TestEvaluateFeature_UnknownStrategy(t *testing.T) {
	e := New()

	feature := &ast.FeatureToggle{
		Key:      "odd",
		Active:   true,
		Strategy: "percentage_of_the_moon",
	}
	decision := e.EvaluateFeature(feature, Context{})
	if decision.Enabled || decision.Reason != ReasonUnknownStrategy {
		t.Errorf("unknown strategy: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
	if len(decision.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the unknown strategy")
	}
}

func TestEvaluateFeature_Nil(t *testing.T) {
	e := New()
	decision := e.EvaluateFeature(nil, Context{})
	if decision.Enabled || decision.Reason != ReasonFeatureUnresolved {
		t.Errorf("nil feature: enabled=%v reason=%s", decision.Enabled, decision.Reason)
	}
}
