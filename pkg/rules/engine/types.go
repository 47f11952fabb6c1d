package engine

import (
	"fmt"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// Context is the runtime payload one evaluation runs against: an arbitrary
// nested key/value document built by the caller from request or session
// data. It is ephemeral and scoped to a single call.
type Context map[string]any

// Reason codes returned by the orchestrators. Collaborators and tests
// dispatch on these, never on human-readable text.
const (
	ReasonPolicyTriggered     = "policy_triggered"
	ReasonNoRulesMatched      = "no_rules_matched"
	ReasonPolicyInactive      = "policy_inactive"
	ReasonPolicyUnresolved    = "policy_unresolved"
	ReasonFeatureInactive     = "feature_inactive"
	ReasonFeatureUnresolved   = "feature_unresolved"
	ReasonEnvironmentMismatch = "environment_mismatch"
	ReasonRolloutImmediate    = "rollout_immediate"
	ReasonRolloutPercentage   = "rollout_percentage"
	ReasonAudienceMatch       = "audience_match"
	ReasonAudienceNoMatch     = "audience_no_match"
	ReasonConditionsNotMet    = "conditions_not_met"
	ReasonDependencyNotMet    = "dependency_not_met"
	ReasonMissingIdentifier   = "missing_identifier"
	ReasonUnknownStrategy     = "unknown_strategy"
)

// Variants reported by percentage rollouts.
const (
	VariantControl   = "control"
	VariantTreatment = "treatment"
)

// Diagnostic records a non-fatal problem observed during evaluation: a
// missing field, an unknown operator, a type mismatch. Diagnostics attach to
// the result; they never abort an evaluation.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	RuleID  string `json:"ruleId,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Diagnostic codes.
const (
	DiagFieldNotFound   = "field_not_found"
	DiagUnknownOperator = "unknown_operator"
	DiagTypeMismatch    = "type_mismatch"
	DiagInvalidRegex    = "invalid_regex"
	DiagMalformedNode   = "malformed_condition"
)

// RuleResult is the outcome of evaluating one rule.
type RuleResult struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Matched  bool   `json:"matched"`

	// Violation is a human-readable description of what the rule flagged,
	// built from the rule's name and description. Set only on match.
	Violation string `json:"violation,omitempty"`

	Diagnostics []*Diagnostic `json:"diagnostics,omitempty"`
}

// ExecutedAction is one entry of the ordered action list a triggered policy
// hands back to its caller. The engine selects actions; it never runs them.
type ExecutedAction struct {
	ActionID   string         `json:"actionId"`
	Type       ast.ActionType `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Order      int            `json:"order"`

	// Fallback is true when this entry replaced an action whose own
	// conditions did not hold.
	Fallback bool `json:"fallback,omitempty"`
}

// Verdict is the engine's single authoritative answer for one policy
// evaluation. It is immutable once returned and is persisted only through
// the audit recorder.
type Verdict struct {
	PolicyID      string `json:"policyId"`
	PolicyVersion int    `json:"policyVersion"`
	Triggered     bool   `json:"triggered"`
	Reason        string `json:"reason"`

	MatchedRules    []*RuleResult     `json:"matchedRules,omitempty"`
	ExecutedActions []*ExecutedAction `json:"executedActions,omitempty"`
	Diagnostics     []*Diagnostic     `json:"diagnostics,omitempty"`

	EvaluationTimeMs float64 `json:"evaluationTimeMs"`
}

// Violations returns the violation strings of all matched rules, in rule
// order, for audit and UX use.
func (v *Verdict) Violations() []string {
	var out []string
	for _, r := range v.MatchedRules {
		if r.Matched && r.Violation != "" {
			out = append(out, r.Violation)
		}
	}
	return out
}

// FeatureDecision is the engine's answer for one feature evaluation.
type FeatureDecision struct {
	FeatureKey     string `json:"featureKey"`
	FeatureVersion int    `json:"featureVersion"`
	Enabled        bool   `json:"enabled"`
	Variant        string `json:"variant,omitempty"`
	Reason         string `json:"reason"`

	Diagnostics []*Diagnostic `json:"diagnostics,omitempty"`

	EvaluationTimeMs float64 `json:"evaluationTimeMs"`
}

// diagSink accumulates diagnostics during a single evaluation.
type diagSink struct {
	diags []*Diagnostic
}

func (s *diagSink) add(code, format string, args ...any) {
	s.diags = append(s.diags, &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *diagSink) addField(code, field, format string, args ...any) {
	s.diags = append(s.diags, &Diagnostic{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}
