package engine

import "github.com/offerhub/verdict/pkg/rules/ast"

// EvaluateCondition evaluates one condition tree against a context. It is
// exported for the feature orchestrator's audience criteria and for
// collaborators that need ad-hoc condition checks outside a policy.
func (e *Engine) EvaluateCondition(cond *ast.ConditionNode, ctx Context) bool {
	sink := &diagSink{}
	return e.evalCondition(cond, ctx, sink)
}

// evalCondition evaluates a node: the leaf predicate first, then the
// children, combined with the node's logical operator. AND and OR
// short-circuit left-to-right so expensive operators on later children are
// skipped once the outcome is fixed.
func (e *Engine) evalCondition(cond *ast.ConditionNode, ctx Context, sink *diagSink) bool {
	if cond == nil {
		return true
	}

	op := cond.LogicalOp()

	if op == ast.LogicalNot {
		// The validator guarantees exactly one child and no leaf predicate.
		// A malformed node reaching evaluation degrades to no match.
		if len(cond.Children) != 1 || cond.HasPredicate() {
			sink.add(DiagMalformedNode, "NOT condition %s must have exactly one child and no predicate", cond.ID)
			return false
		}
		return !e.evalCondition(cond.Children[0], ctx, sink)
	}

	results := make([]func() bool, 0, len(cond.Children)+1)
	if cond.HasPredicate() {
		results = append(results, func() bool { return e.evalLeaf(cond, ctx, sink) })
	}
	for _, child := range cond.Children {
		child := child
		results = append(results, func() bool { return e.evalCondition(child, ctx, sink) })
	}

	if len(results) == 0 {
		// Neither predicate nor children: vacuously true.
		return true
	}

	switch op {
	case ast.LogicalOr:
		for _, eval := range results {
			if eval() {
				return true
			}
		}
		return false
	default: // AND
		for _, eval := range results {
			if !eval() {
				return false
			}
		}
		return true
	}
}

// evalLeaf evaluates the node's own field test.
func (e *Engine) evalLeaf(cond *ast.ConditionNode, ctx Context, sink *diagSink) bool {
	actual, found := Resolve(ctx, cond.Field)
	return e.applyOperator(cond.Operator, cond.Field, actual, found, cond.Value, sink)
}
