package engine

import (
	"fmt"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// EvaluateRule evaluates one rule against a context. A rule whose field path
// is absent from the context never matches and carries a "field not found"
// diagnostic; it never produces an error.
func (e *Engine) EvaluateRule(rule *ast.Rule, ctx Context) *RuleResult {
	result := &RuleResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
	}
	sink := &diagSink{}

	actual, found := Resolve(ctx, rule.Field)
	if !found {
		sink.addField(DiagFieldNotFound, rule.Field, "field not found")
		result.Diagnostics = attachRule(sink.diags, rule.ID)
		return result
	}

	matched := e.applyOperator(rule.Operator, rule.Field, actual, found, rule.Value, sink)

	// Attached conditions are ANDed with the rule's own test; skip them once
	// the field test already failed.
	if matched {
		for _, cond := range rule.Conditions {
			if !e.evalCondition(cond, ctx, sink) {
				matched = false
				break
			}
		}
	}

	result.Matched = matched
	result.Diagnostics = attachRule(sink.diags, rule.ID)
	if matched {
		result.Violation = violationText(rule)
	}
	return result
}

// violationText builds the human-readable violation string surfaced in
// audits and moderator UX.
func violationText(rule *ast.Rule) string {
	if rule.Description != "" {
		return fmt.Sprintf("%s: %s", rule.Name, rule.Description)
	}
	return fmt.Sprintf("rule %q matched", rule.Name)
}

func attachRule(diags []*Diagnostic, ruleID string) []*Diagnostic {
	for _, d := range diags {
		if d.RuleID == "" {
			d.RuleID = ruleID
		}
	}
	return diags
}
