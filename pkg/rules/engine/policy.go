package engine

import (
	"time"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// EvaluatePolicy runs every active rule of a policy against the context and
// returns the Verdict. Rules are OR-combined: one match triggers the policy.
// On trigger the active actions are ordered, deduplicated, and filtered by
// their own conditions; the engine returns the list for a collaborator to
// execute and performs no side effects itself.
//
// The caller must hand in an immutable snapshot that passed dependency and
// conflict validation at its last activation; that is not re-checked here.
// EvaluatePolicy never returns an error: a malformed rule degrades to "no
// match" with a diagnostic, and an unresolvable policy is a verdict that
// never triggers.
func (e *Engine) EvaluatePolicy(policy *ast.Policy, ctx Context) *Verdict {
	start := time.Now()

	if policy == nil {
		return &Verdict{Reason: ReasonPolicyUnresolved}
	}

	verdict := &Verdict{
		PolicyID:      policy.ID,
		PolicyVersion: policy.Version,
	}
	defer func() {
		verdict.EvaluationTimeMs = float64(time.Since(start).Nanoseconds()) / 1e6
		e.observePolicy(verdict)
	}()

	if !policy.IsActive() {
		verdict.Reason = ReasonPolicyInactive
		return verdict
	}

	triggered := false
	for _, rule := range policy.ActiveRules() {
		result := e.EvaluateRule(rule, ctx)
		verdict.MatchedRules = append(verdict.MatchedRules, result)
		verdict.Diagnostics = append(verdict.Diagnostics, result.Diagnostics...)
		if result.Matched {
			triggered = true
		}
	}

	verdict.Triggered = triggered
	if !triggered {
		verdict.Reason = ReasonNoRulesMatched
		return verdict
	}

	verdict.Reason = ReasonPolicyTriggered
	verdict.ExecutedActions = e.selectActions(policy, ctx)
	return verdict
}

// selectActions builds the ordered action list for a triggered policy:
// active actions sorted by order and deduplicated by id, each gated by its
// own conditions against the same context. An action whose conditions fail
// is replaced by its fallback when one is declared, otherwise skipped.
func (e *Engine) selectActions(policy *ast.Policy, ctx Context) []*ExecutedAction {
	var selected []*ExecutedAction
	for _, action := range policy.ActiveActions() {
		entry, ok := e.selectAction(action, ctx, false)
		if ok {
			selected = append(selected, entry)
		}
	}
	return selected
}

func (e *Engine) selectAction(action *ast.Action, ctx Context, viaFallback bool) (*ExecutedAction, bool) {
	for _, cond := range action.Conditions {
		if !e.EvaluateCondition(cond, ctx) {
			if action.Fallback != nil {
				return e.selectAction(action.Fallback, ctx, true)
			}
			return nil, false
		}
	}
	return &ExecutedAction{
		ActionID:   action.ID,
		Type:       action.Type,
		Parameters: action.Parameters,
		Order:      action.Order,
		Fallback:   viaFallback,
	}, true
}
