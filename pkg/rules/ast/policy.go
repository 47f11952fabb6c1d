package ast

import (
	"sort"
	"time"
)

// PolicyStatus tracks a policy through its lifecycle.
type PolicyStatus string

const (
	StatusDraft      PolicyStatus = "draft"
	StatusActive     PolicyStatus = "active"
	StatusInactive   PolicyStatus = "inactive"
	StatusDeprecated PolicyStatus = "deprecated"
	StatusTesting    PolicyStatus = "testing"
	StatusSuspended  PolicyStatus = "suspended"
)

// IsKnown reports whether s is a recognized policy status.
func (s PolicyStatus) IsKnown() bool {
	switch s {
	case StatusDraft, StatusActive, StatusInactive, StatusDeprecated,
		StatusTesting, StatusSuspended:
		return true
	}
	return false
}

// AllowsEvaluation reports whether a policy in this status may be marked
// active. Active implies status is active or testing.
func (s PolicyStatus) AllowsEvaluation() bool {
	return s == StatusActive || s == StatusTesting
}

// Policy is a declarative rule and action bundle. It flags a runtime
// condition (via its rules) and reacts to it (via its actions).
type Policy struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string       `yaml:"category,omitempty" json:"category,omitempty"`
	Type        string       `yaml:"type,omitempty" json:"type,omitempty"`
	Status      PolicyStatus `yaml:"status" json:"status"`
	Priority    int          `yaml:"priority,omitempty" json:"priority,omitempty"`
	Version     int          `yaml:"version" json:"version"`
	Scope       string       `yaml:"scope,omitempty" json:"scope,omitempty"`
	Environment string       `yaml:"environment,omitempty" json:"environment,omitempty"`
	Active      bool         `yaml:"active" json:"isActive"`

	Rules        []*Rule       `yaml:"rules,omitempty" json:"rules,omitempty"`
	Actions      []*Action     `yaml:"actions,omitempty" json:"actions,omitempty"`
	Dependencies []*Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	CreatedAt time.Time `yaml:"created,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `yaml:"updated,omitempty" json:"updatedAt,omitempty"`
}

// IsActive reports whether the policy participates in evaluation. The
// registry keeps Active consistent with Status; this helper double-checks
// the invariant so a hand-built policy cannot evaluate in a retired status.
func (p *Policy) IsActive() bool {
	return p.Active && p.Status.AllowsEvaluation()
}

// GetRule returns the rule with the given id, or nil.
func (p *Policy) GetRule(id string) *Rule {
	for _, rule := range p.Rules {
		if rule.ID == id {
			return rule
		}
	}
	return nil
}

// ActiveRules returns the policy's active rules in definition order.
func (p *Policy) ActiveRules() []*Rule {
	var active []*Rule
	for _, rule := range p.Rules {
		if rule.IsActive() {
			active = append(active, rule)
		}
	}
	return active
}

// ActiveActions returns the policy's active actions sorted by Order,
// deduplicated by ID. When two actions share an ID the first by Order wins.
func (p *Policy) ActiveActions() []*Action {
	var active []*Action
	for _, action := range p.Actions {
		if action.IsActive() {
			active = append(active, action)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Order < active[j].Order
	})
	seen := make(map[string]bool, len(active))
	deduped := active[:0]
	for _, action := range active {
		if seen[action.ID] {
			continue
		}
		seen[action.ID] = true
		deduped = append(deduped, action)
	}
	return deduped
}

// PrerequisiteIDs returns the ids of policies this policy requires to be
// active, in declaration order.
func (p *Policy) PrerequisiteIDs() []string {
	var ids []string
	for _, dep := range p.Dependencies {
		if dep.Type == DependencyPrerequisite {
			ids = append(ids, dep.DependsOn)
		}
	}
	return ids
}

// ConflictIDs returns the ids of policies this policy may not be active
// alongside, in declaration order.
func (p *Policy) ConflictIDs() []string {
	var ids []string
	for _, dep := range p.Dependencies {
		if dep.Type == DependencyConflict {
			ids = append(ids, dep.DependsOn)
		}
	}
	return ids
}

// Clone returns a deep copy of the policy. The registry hands clones to the
// engine so in-flight evaluations never observe edits.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	clone := *p
	if len(p.Rules) > 0 {
		clone.Rules = make([]*Rule, len(p.Rules))
		for i, rule := range p.Rules {
			clone.Rules[i] = rule.Clone()
		}
	}
	if len(p.Actions) > 0 {
		clone.Actions = make([]*Action, len(p.Actions))
		for i, action := range p.Actions {
			clone.Actions[i] = action.Clone()
		}
	}
	if len(p.Dependencies) > 0 {
		clone.Dependencies = make([]*Dependency, len(p.Dependencies))
		for i, dep := range p.Dependencies {
			clone.Dependencies[i] = dep.Clone()
		}
	}
	return &clone
}
