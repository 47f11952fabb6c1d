package validator

import (
	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/errors"
)

// PolicyView exposes the other policies a dependency check runs against.
// The registry implements it; tests supply fakes.
type PolicyView interface {
	PolicyByID(id string) (*ast.Policy, bool)
}

// Validator runs all validation passes over definitions.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidatePolicy runs the structural and conflict passes over a single
// policy. It does not need a view of other policies; dependency graph
// checks happen in ValidateActivation.
func (v *Validator) ValidatePolicy(policy *ast.Policy) *errors.List {
	list := errors.NewList()
	v.validateStructure(policy, list)

	// Conflict scanning on a structurally broken policy produces noise, so
	// it only runs once the structural pass is clean.
	if !list.HasBlocking() {
		v.scanRuleConflicts(policy, list)
	}
	return list
}

// ValidateActivation runs every pass required before a policy may be
// promoted to active: structure, rule conflicts, and the dependency graph
// against the given view. A blocking entry in the result forbids
// activation; warnings surface but do not block.
func (v *Validator) ValidateActivation(policy *ast.Policy, view PolicyView) *errors.List {
	list := v.ValidatePolicy(policy)
	if list.HasBlocking() {
		return list
	}
	v.validateDependencies(policy, view, list)
	return list
}

// ValidateFeature runs the structural pass over a feature toggle.
func (v *Validator) ValidateFeature(feature *ast.FeatureToggle) *errors.List {
	list := errors.NewList()
	v.validateFeatureStructure(feature, list)
	return list
}
