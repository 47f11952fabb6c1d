package ast

// Operator identifies a comparison predicate applied by rules and condition
// leaves. The full set is implemented by the engine's operator library.
type Operator string

const (
	OperatorEquals             Operator = "equals"
	OperatorNotEquals          Operator = "not_equals"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
	OperatorLessThan           Operator = "less_than"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorContains           Operator = "contains"
	OperatorNotContains        Operator = "not_contains"
	OperatorStartsWith         Operator = "starts_with"
	OperatorEndsWith           Operator = "ends_with"
	OperatorRegexMatch         Operator = "regex_match"
	OperatorInList             Operator = "in_list"
	OperatorNotInList          Operator = "not_in_list"
	OperatorIsNull             Operator = "is_null"
	OperatorIsNotNull          Operator = "is_not_null"
	OperatorIsEmpty            Operator = "is_empty"
	OperatorIsNotEmpty         Operator = "is_not_empty"
	OperatorExists             Operator = "exists"
	OperatorNotExists          Operator = "not_exists"
)

// Operators lists every operator the engine understands, in a stable order.
// The validator uses it to reject unknown operators at activation time.
var Operators = []Operator{
	OperatorEquals,
	OperatorNotEquals,
	OperatorGreaterThan,
	OperatorGreaterThanOrEqual,
	OperatorLessThan,
	OperatorLessThanOrEqual,
	OperatorContains,
	OperatorNotContains,
	OperatorStartsWith,
	OperatorEndsWith,
	OperatorRegexMatch,
	OperatorInList,
	OperatorNotInList,
	OperatorIsNull,
	OperatorIsNotNull,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
	OperatorExists,
	OperatorNotExists,
}

// IsKnown reports whether op is one of the operators the engine implements.
func (op Operator) IsKnown() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// IsUnary reports whether op tests only the field and ignores the rule value
// (existence, null, and emptiness checks).
func (op Operator) IsUnary() bool {
	switch op {
	case OperatorIsNull, OperatorIsNotNull, OperatorIsEmpty, OperatorIsNotEmpty,
		OperatorExists, OperatorNotExists:
		return true
	}
	return false
}

// IsNumeric reports whether op performs an ordered numeric comparison.
func (op Operator) IsNumeric() bool {
	switch op {
	case OperatorGreaterThan, OperatorGreaterThanOrEqual,
		OperatorLessThan, OperatorLessThanOrEqual:
		return true
	}
	return false
}

// LogicalOperator combines the results of a condition node's children.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
	LogicalNot LogicalOperator = "NOT"
)

// ConditionNode is one node of a condition tree.
//
// A leaf carries Field, Operator, and Value and no children. A composite
// carries children combined with LogicalOp. A node with both a leaf
// predicate and children combines its own result with the children's
// combined result using the same logical operator.
type ConditionNode struct {
	ID       string          `yaml:"id" json:"id"`
	Type     string          `yaml:"type,omitempty" json:"type,omitempty"`
	Field    string          `yaml:"field,omitempty" json:"field,omitempty"`
	Operator Operator        `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    any             `yaml:"value,omitempty" json:"value,omitempty"`
	Logical  LogicalOperator `yaml:"logical_operator,omitempty" json:"logicalOperator,omitempty"`
	Children []*ConditionNode `yaml:"sub_conditions,omitempty" json:"subConditions,omitempty"`
}

// IsLeaf reports whether the node has no child conditions.
func (c *ConditionNode) IsLeaf() bool {
	return len(c.Children) == 0
}

// HasPredicate reports whether the node carries its own field test in
// addition to any children.
func (c *ConditionNode) HasPredicate() bool {
	return c.Field != "" && c.Operator != ""
}

// LogicalOp returns the node's logical operator, defaulting to AND when
// unset.
func (c *ConditionNode) LogicalOp() LogicalOperator {
	if c.Logical == "" {
		return LogicalAnd
	}
	return c.Logical
}

// Clone returns a deep copy of the condition tree. Values are copied by
// reference; definitions treat them as immutable.
func (c *ConditionNode) Clone() *ConditionNode {
	if c == nil {
		return nil
	}
	clone := *c
	if len(c.Children) > 0 {
		clone.Children = make([]*ConditionNode, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return &clone
}

// Walk visits the node and every descendant in depth-first order. It stops
// early if fn returns false.
func (c *ConditionNode) Walk(fn func(*ConditionNode) bool) bool {
	if c == nil {
		return true
	}
	if !fn(c) {
		return false
	}
	for _, child := range c.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
