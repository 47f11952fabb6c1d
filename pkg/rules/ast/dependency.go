package ast

// DependencyType describes the relationship declared between two policies.
type DependencyType string

const (
	// DependencyPrerequisite requires the referenced policy to exist and be
	// active before this one can activate. Prerequisite chains must be
	// acyclic.
	DependencyPrerequisite DependencyType = "prerequisite"

	// DependencyConflict forbids the two policies from being active at the
	// same time.
	DependencyConflict DependencyType = "conflict"

	// DependencyOverride states that this policy supersedes the referenced
	// one when both match.
	DependencyOverride DependencyType = "override"

	// DependencyEnhancement states that this policy extends the referenced
	// one; informational, never blocking.
	DependencyEnhancement DependencyType = "enhancement"

	// DependencyFallback states that this policy applies when the referenced
	// one does not trigger; informational, never blocking.
	DependencyFallback DependencyType = "fallback"
)

// DependencyTypes lists the valid dependency types in a stable order.
var DependencyTypes = []DependencyType{
	DependencyPrerequisite,
	DependencyConflict,
	DependencyOverride,
	DependencyEnhancement,
	DependencyFallback,
}

// IsKnown reports whether t is a recognized dependency type.
func (t DependencyType) IsKnown() bool {
	for _, known := range DependencyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Dependency declares an ordering or exclusion relationship from one policy
// to another. The dependency validator enforces these at activation time.
type Dependency struct {
	PolicyID  string         `yaml:"policy_id" json:"policyId"`
	DependsOn string         `yaml:"depends_on" json:"dependsOnPolicyId"`
	Type      DependencyType `yaml:"type" json:"type"`
	Condition string         `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// Clone returns a copy of the dependency.
func (d *Dependency) Clone() *Dependency {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
