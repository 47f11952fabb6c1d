// Package engine evaluates policies and feature toggles against runtime
// contexts.
//
// The engine is deliberately side-effect free: it decides whether a policy
// triggers and which actions a collaborator should run, and whether a
// feature is enabled for a context, but it never executes actions, writes
// audit records, or performs I/O. Evaluation is synchronous, CPU-bound, and
// safe for concurrent use; definitions must be immutable snapshots for the
// duration of a call.
//
// # Evaluation Model
//
// Policies: every active rule is evaluated via the rule evaluator and
// OR-combined at the policy level. One matching rule triggers the policy.
// On trigger the active actions are ordered, deduplicated, and filtered by
// their own conditions, with fallback substitution when an action's
// conditions fail.
//
// Features: the rollout strategy (immediate, percentage, user_group,
// attributes) produces the base decision; feature-level conditions and
// prerequisite features are ANDed on top. Every branch returns a reason
// code.
//
// # Failure Behavior
//
// Evaluation never returns an error. Malformed input degrades to "no match"
// or "disabled" with a diagnostic attached to the result. Missing fields,
// unknown operators, and type mismatches are diagnostics, not failures.
//
// # Determinism
//
// Percentage bucketing is a pure hash of (feature key, identifier). The most
// important correctness property of the engine is that identical inputs
// bucket identically across calls and process restarts.
//
// # Basic Usage
//
//	eng := engine.New(engine.WithEnvironment("production"))
//	verdict := eng.EvaluatePolicy(policy, engine.Context{
//	    "user": map[string]any{"reputation": 40},
//	})
//	if verdict.Triggered {
//	    dispatch(verdict.ExecutedActions)
//	}
package engine
