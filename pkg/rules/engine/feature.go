package engine

import (
	"time"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// EvaluateFeature determines whether a feature toggle is enabled for one
// context under its rollout strategy. Every branch returns a reason code so
// the outcome is testable without inspecting internals.
//
// Preconditions checked here: the toggle is active and its environment
// matches the engine's. Feature-level conditions and prerequisite features
// are ANDed with the strategy result. Like policy evaluation, this never
// returns an error.
func (e *Engine) EvaluateFeature(feature *ast.FeatureToggle, ctx Context) *FeatureDecision {
	return e.evaluateFeature(feature, ctx, nil)
}

// evaluateFeature carries the set of toggle keys already on the dependency
// walk so a cyclic prerequisite chain terminates instead of recursing.
func (e *Engine) evaluateFeature(feature *ast.FeatureToggle, ctx Context, visited map[string]bool) *FeatureDecision {
	start := time.Now()

	if feature == nil {
		return &FeatureDecision{Reason: ReasonFeatureUnresolved}
	}

	decision := &FeatureDecision{
		FeatureKey:     feature.Key,
		FeatureVersion: feature.Version,
	}
	defer func() {
		decision.EvaluationTimeMs = float64(time.Since(start).Nanoseconds()) / 1e6
		e.observeFeature(decision)
	}()

	if !feature.IsActive() {
		decision.Reason = ReasonFeatureInactive
		return decision
	}

	if feature.Environment != "" && e.env != "" && feature.Environment != e.env {
		decision.Reason = ReasonEnvironmentMismatch
		return decision
	}

	enabled, reason, variant := e.applyStrategy(feature, ctx, decision)
	decision.Variant = variant
	if !enabled {
		decision.Reason = reason
		return decision
	}

	// Feature-level conditions are ANDed with the strategy result.
	for _, cond := range feature.Conditions {
		if !e.EvaluateCondition(cond, ctx) {
			decision.Reason = ReasonConditionsNotMet
			return decision
		}
	}

	// Prerequisite features must themselves be enabled for this context.
	if len(feature.Dependencies) > 0 {
		if visited == nil {
			visited = make(map[string]bool)
		}
		visited[feature.Key] = true
		// Unmark on exit so a prerequisite shared by two branches of the
		// same walk is not mistaken for a cycle.
		defer delete(visited, feature.Key)
		for _, key := range feature.Dependencies {
			if !e.dependencyMet(key, ctx, visited) {
				decision.Reason = ReasonDependencyNotMet
				return decision
			}
		}
	}

	decision.Enabled = true
	decision.Reason = reason
	return decision
}

// applyStrategy dispatches on the rollout strategy and returns the base
// decision before conditions and dependencies are applied.
func (e *Engine) applyStrategy(feature *ast.FeatureToggle, ctx Context, decision *FeatureDecision) (bool, string, string) {
	switch feature.Strategy {
	case ast.RolloutImmediate, "":
		// Context is ignored; an active toggle is simply on.
		return true, ReasonRolloutImmediate, ""

	case ast.RolloutPercentage:
		identifier, found := Resolve(ctx, feature.Identifier())
		text, ok := asText(identifier)
		if !found || !ok || text == "" {
			// Without a stable identifier the bucket is undefined; fail
			// closed rather than admit everyone.
			return false, ReasonMissingIdentifier, ""
		}
		if InRollout(feature.Key, text, feature.Percentage) {
			return true, ReasonRolloutPercentage, VariantTreatment
		}
		return false, ReasonRolloutPercentage, VariantControl

	case ast.RolloutUserGroup, ast.RolloutAttributes:
		if feature.Audience == nil || feature.Audience.Criteria == nil {
			return false, ReasonAudienceNoMatch, ""
		}
		if e.EvaluateCondition(feature.Audience.Criteria, ctx) {
			return true, ReasonAudienceMatch, ""
		}
		return false, ReasonAudienceNoMatch, ""

	default:
		decision.Diagnostics = append(decision.Diagnostics, &Diagnostic{
			Code:    DiagMalformedNode,
			Message: "unknown rollout strategy " + string(feature.Strategy),
		})
		return false, ReasonUnknownStrategy, ""
	}
}

// dependencyMet resolves a prerequisite feature and evaluates it for the
// same context. An unresolvable prerequisite is unmet, and so is one that
// was already visited on this walk, which closes dependency cycles.
func (e *Engine) dependencyMet(key string, ctx Context, visited map[string]bool) bool {
	if e.features == nil || visited[key] {
		return false
	}
	dep, ok := e.features.FeatureByKey(key)
	if !ok {
		return false
	}
	return e.evaluateFeature(dep, ctx, visited).Enabled
}
