package ast

import "time"

// RolloutStrategy selects how a feature toggle computes its enabled state
// for a given context.
type RolloutStrategy string

const (
	// RolloutImmediate enables the feature for everyone; the context is
	// ignored.
	RolloutImmediate RolloutStrategy = "immediate"

	// RolloutPercentage enables the feature for a deterministic percentage
	// of identifiers via hash bucketing.
	RolloutPercentage RolloutStrategy = "percentage"

	// RolloutUserGroup enables the feature for contexts matching the target
	// audience criteria.
	RolloutUserGroup RolloutStrategy = "user_group"

	// RolloutAttributes enables the feature for contexts matching the target
	// audience criteria; semantically identical to user_group, kept separate
	// for definition clarity.
	RolloutAttributes RolloutStrategy = "attributes"
)

// RolloutStrategies lists the valid strategies in a stable order.
var RolloutStrategies = []RolloutStrategy{
	RolloutImmediate,
	RolloutPercentage,
	RolloutUserGroup,
	RolloutAttributes,
}

// IsKnown reports whether s is a recognized rollout strategy.
func (s RolloutStrategy) IsKnown() bool {
	for _, known := range RolloutStrategies {
		if s == known {
			return true
		}
	}
	return false
}

// TargetAudience defines who an audience-based rollout applies to.
// Criteria is evaluated through the same condition evaluator as policies.
type TargetAudience struct {
	Criteria *ConditionNode `yaml:"criteria,omitempty" json:"criteria,omitempty"`
	Groups   []string       `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// Clone returns a deep copy of the audience.
func (t *TargetAudience) Clone() *TargetAudience {
	if t == nil {
		return nil
	}
	clone := TargetAudience{Criteria: t.Criteria.Clone()}
	if len(t.Groups) > 0 {
		clone.Groups = append([]string(nil), t.Groups...)
	}
	return &clone
}

// FeatureToggle is a declarative switch enabling a capability for a subset
// of contexts under a rollout strategy.
type FeatureToggle struct {
	ID          string          `yaml:"id" json:"id"`
	Key         string          `yaml:"key" json:"key"`
	Name        string          `yaml:"name,omitempty" json:"name,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Active      bool            `yaml:"active" json:"isActive"`
	Strategy    RolloutStrategy `yaml:"rollout_strategy" json:"rolloutStrategy"`

	// Percentage is meaningful only under the percentage strategy; the
	// validator enforces the 0-100 range.
	Percentage int `yaml:"rollout_percentage,omitempty" json:"rolloutPercentage,omitempty"`

	Audience *TargetAudience `yaml:"target_audience,omitempty" json:"targetAudience,omitempty"`

	// Conditions are ANDed with the strategy result.
	Conditions []*ConditionNode `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	// Dependencies are keys of prerequisite features that must be enabled
	// for the same context.
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	Environment string `yaml:"environment,omitempty" json:"environment,omitempty"`
	Version     int    `yaml:"version" json:"version"`

	// DefaultValue is the enabled state collaborators fall back to when the
	// toggle cannot be resolved at all.
	DefaultValue bool `yaml:"default_value" json:"defaultValue"`

	// IdentifierField is the context path hashed for percentage bucketing.
	// Defaults to "user.id" when unset.
	IdentifierField string `yaml:"identifier_field,omitempty" json:"identifierField,omitempty"`

	CreatedAt time.Time `yaml:"created,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `yaml:"updated,omitempty" json:"updatedAt,omitempty"`
}

// IsActive reports whether the toggle participates in evaluation.
func (f *FeatureToggle) IsActive() bool {
	return f.Active
}

// Identifier returns the context path used for percentage bucketing.
func (f *FeatureToggle) Identifier() string {
	if f.IdentifierField == "" {
		return "user.id"
	}
	return f.IdentifierField
}

// Clone returns a deep copy of the feature toggle.
func (f *FeatureToggle) Clone() *FeatureToggle {
	if f == nil {
		return nil
	}
	clone := *f
	clone.Audience = f.Audience.Clone()
	if len(f.Conditions) > 0 {
		clone.Conditions = make([]*ConditionNode, len(f.Conditions))
		for i, cond := range f.Conditions {
			clone.Conditions[i] = cond.Clone()
		}
	}
	if len(f.Dependencies) > 0 {
		clone.Dependencies = append([]string(nil), f.Dependencies...)
	}
	return &clone
}
