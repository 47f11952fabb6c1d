package ast

// Rule is a single policy rule: a field test plus optional attached
// conditions. A rule matches only when its own operator test and every
// attached condition hold.
type Rule struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	Field       string   `yaml:"field" json:"field"`
	Operator    Operator `yaml:"operator" json:"operator"`
	Value       any      `yaml:"value,omitempty" json:"value,omitempty"`
	Weight      int      `yaml:"weight,omitempty" json:"weight,omitempty"`
	Active      bool     `yaml:"active" json:"isActive"`

	// Conditions are ANDed with the rule's own field test.
	Conditions []*ConditionNode `yaml:"conditions,omitempty" json:"subConditions,omitempty"`
}

// IsActive reports whether the rule participates in evaluation.
func (r *Rule) IsActive() bool {
	return r.Active
}

// HasConditions reports whether the rule has attached conditions.
func (r *Rule) HasConditions() bool {
	return len(r.Conditions) > 0
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	clone := *r
	if len(r.Conditions) > 0 {
		clone.Conditions = make([]*ConditionNode, len(r.Conditions))
		for i, cond := range r.Conditions {
			clone.Conditions[i] = cond.Clone()
		}
	}
	return &clone
}
