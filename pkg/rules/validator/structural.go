package validator

import (
	"fmt"
	"regexp"

	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/errors"
)

// validateStructure checks a policy's own shape: status invariants, id
// uniqueness, rule operator/value compatibility, condition trees, and
// action parameter bags.
func (v *Validator) validateStructure(policy *ast.Policy, list *errors.List) {
	if policy.ID == "" {
		list.Add(errors.ErrorTypeValidation, errors.CodeMissingValue,
			"policy id is required", nil)
	}
	if !policy.Status.IsKnown() {
		list.Add(errors.ErrorTypeValidation, errors.CodeMissingValue,
			fmt.Sprintf("unknown policy status %q", policy.Status),
			map[string]any{"policy": policy.ID})
	}
	if policy.Active && !policy.Status.AllowsEvaluation() {
		list.Add(errors.ErrorTypeValidation, errors.CodeStatusInvariant,
			fmt.Sprintf("policy cannot be active in status %q", policy.Status),
			map[string]any{"policy": policy.ID})
	}

	seenRules := make(map[string]bool, len(policy.Rules))
	for _, rule := range policy.Rules {
		if seenRules[rule.ID] {
			list.Add(errors.ErrorTypeValidation, errors.CodeDuplicateID,
				fmt.Sprintf("duplicate rule id %q", rule.ID),
				map[string]any{"policy": policy.ID})
		}
		seenRules[rule.ID] = true
		v.validateRule(policy.ID, rule, list)
	}

	seenActions := make(map[string]bool, len(policy.Actions))
	for _, action := range policy.Actions {
		if seenActions[action.ID] {
			list.Add(errors.ErrorTypeValidation, errors.CodeDuplicateID,
				fmt.Sprintf("duplicate action id %q", action.ID),
				map[string]any{"policy": policy.ID})
		}
		seenActions[action.ID] = true
		v.validateAction(policy.ID, action, list)
	}

	for _, dep := range policy.Dependencies {
		if !dep.Type.IsKnown() {
			list.Add(errors.ErrorTypeDependency, errors.CodeUnknownDependency,
				fmt.Sprintf("unknown dependency type %q", dep.Type),
				map[string]any{"policy": policy.ID, "depends_on": dep.DependsOn})
		}
		if dep.DependsOn == policy.ID {
			list.Add(errors.ErrorTypeDependency, errors.CodeDependencyCycle,
				"policy cannot depend on itself",
				map[string]any{"policy": policy.ID})
		}
	}
}

// validateRule checks one rule's field test and attached condition trees.
func (v *Validator) validateRule(policyID string, rule *ast.Rule, list *errors.List) {
	details := map[string]any{"policy": policyID, "rule": rule.ID}

	if rule.Field == "" {
		list.Add(errors.ErrorTypeValidation, errors.CodeMissingField,
			"rule field path is required", details)
	}
	v.validatePredicate(rule.Operator, rule.Value, details, list)

	for _, cond := range rule.Conditions {
		v.validateConditionTree(cond, details, list)
	}
}

// validatePredicate checks that an operator is known and type-compatible
// with its comparison value. This runs at activation, never at evaluation.
func (v *Validator) validatePredicate(op ast.Operator, value any, details map[string]any, list *errors.List) {
	if !op.IsKnown() {
		list.Add(errors.ErrorTypeValidation, errors.CodeUnknownOperator,
			fmt.Sprintf("unknown operator %q", op), details)
		return
	}

	if op.IsUnary() {
		if value != nil {
			list.AddWarning(errors.ErrorTypeValidation, errors.CodeOperatorTypeMismatch,
				fmt.Sprintf("operator %q ignores its value", op), details)
		}
		return
	}

	if value == nil {
		list.Add(errors.ErrorTypeValidation, errors.CodeMissingValue,
			fmt.Sprintf("operator %q requires a comparison value", op), details)
		return
	}

	switch {
	case op.IsNumeric():
		if !isNumericValue(value) {
			list.Add(errors.ErrorTypeValidation, errors.CodeOperatorTypeMismatch,
				fmt.Sprintf("operator %q requires a numeric value, got %T", op, value), details)
		}

	case op == ast.OperatorRegexMatch:
		pattern, ok := value.(string)
		if !ok {
			list.Add(errors.ErrorTypeValidation, errors.CodeOperatorTypeMismatch,
				fmt.Sprintf("regex_match requires a string pattern, got %T", value), details)
			return
		}
		if _, err := regexp.Compile(pattern); err != nil {
			list.Add(errors.ErrorTypeConfiguration, errors.CodeInvalidRegex,
				fmt.Sprintf("invalid pattern %q: %v", pattern, err), details)
		}

	case op == ast.OperatorInList || op == ast.OperatorNotInList:
		if !isListValue(value) {
			list.Add(errors.ErrorTypeValidation, errors.CodeOperatorTypeMismatch,
				fmt.Sprintf("operator %q requires a list value, got %T", op, value), details)
		}

	case op == ast.OperatorStartsWith || op == ast.OperatorEndsWith:
		if _, ok := value.(string); !ok {
			list.Add(errors.ErrorTypeValidation, errors.CodeOperatorTypeMismatch,
				fmt.Sprintf("operator %q requires a string value, got %T", op, value), details)
		}
	}
}

// validateConditionTree walks a condition tree checking NOT arity and every
// leaf predicate. Malformed NOT nodes are configuration errors caught here,
// construction-time, rather than at evaluation.
func (v *Validator) validateConditionTree(cond *ast.ConditionNode, details map[string]any, list *errors.List) {
	if cond == nil {
		return
	}

	if cond.LogicalOp() == ast.LogicalNot {
		if len(cond.Children) != 1 || cond.HasPredicate() {
			list.Add(errors.ErrorTypeConfiguration, errors.CodeNotArity,
				fmt.Sprintf("NOT condition %q must have exactly one child and no own predicate", cond.ID),
				details)
		}
	}

	if cond.HasPredicate() {
		v.validatePredicate(cond.Operator, cond.Value, details, list)
	} else if cond.IsLeaf() {
		list.AddWarning(errors.ErrorTypeValidation, errors.CodeMissingField,
			fmt.Sprintf("condition %q has neither a predicate nor children and is always true", cond.ID),
			details)
	}

	for _, child := range cond.Children {
		v.validateConditionTree(child, details, list)
	}
}

// validateAction decodes the action's parameter bag into its typed struct
// and recurses into the fallback chain.
func (v *Validator) validateAction(policyID string, action *ast.Action, list *errors.List) {
	details := map[string]any{"policy": policyID, "action": action.ID}

	if _, err := ast.DecodeParams(action); err != nil {
		list.Add(errors.ErrorTypeValidation, errors.CodeInvalidAction, err.Error(), details)
	}
	for _, cond := range action.Conditions {
		v.validateConditionTree(cond, details, list)
	}
	if action.Fallback != nil {
		v.validateAction(policyID, action.Fallback, list)
	}
}

func isNumericValue(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case string:
		// Numeric-looking strings coerce at evaluation time.
		return numericString(n)
	}
	return false
}

func numericString(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}

func isListValue(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []float64:
		return true
	}
	return false
}
