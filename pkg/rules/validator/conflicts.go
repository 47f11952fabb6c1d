package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/errors"
)

// scanRuleConflicts flags logically contradictory sibling rules within one
// policy: pairs sharing a field whose operator/value combinations cannot
// both be satisfied. Findings are warnings, never blocking, since a policy
// OR-combines its rules and a contradictory pair usually signals a typo
// rather than an invalid definition.
func (v *Validator) scanRuleConflicts(policy *ast.Policy, list *errors.List) {
	rules := policy.Rules
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			a, b := rules[i], rules[j]
			if a.Field == "" || a.Field != b.Field {
				continue
			}
			if reason, ok := contradictory(a, b); ok {
				list.AddWarning(errors.ErrorTypeValidation, errors.CodeRuleConflict,
					fmt.Sprintf("rules %q and %q contradict on field %q: %s", a.ID, b.ID, a.Field, reason),
					map[string]any{"policy": policy.ID, "rule": a.ID, "other": b.ID})
			}
		}
	}
}

// contradictory reports whether two rules on the same field can never both
// match.
func contradictory(a, b *ast.Rule) (string, bool) {
	// equals X vs not_equals X
	if opposes(a.Operator, b.Operator, ast.OperatorEquals, ast.OperatorNotEquals) &&
		sameValue(a.Value, b.Value) {
		return "equals vs not_equals on the same value", true
	}

	// greater_than X vs less_than Y with X >= Y leaves no satisfiable range.
	if gt, lt, ok := orderedPair(a, b); ok {
		gtVal, gok := numberOf(gt.Value)
		ltVal, lok := numberOf(lt.Value)
		if gok && lok && gtVal >= ltVal {
			return "greater_than and less_than bounds exclude every value", true
		}
	}

	return "", false
}

func opposes(a, b, x, y ast.Operator) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// orderedPair returns the (greater_than, less_than) rules of a pair when
// the pair forms one, in either order.
func orderedPair(a, b *ast.Rule) (gt, lt *ast.Rule, ok bool) {
	switch {
	case a.Operator == ast.OperatorGreaterThan && b.Operator == ast.OperatorLessThan:
		return a, b, true
	case b.Operator == ast.OperatorGreaterThan && a.Operator == ast.OperatorLessThan:
		return b, a, true
	}
	return nil, nil, false
}

func sameValue(a, b any) bool {
	if an, aok := numberOf(a); aok {
		if bn, bok := numberOf(b); bok {
			return an == bn
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
