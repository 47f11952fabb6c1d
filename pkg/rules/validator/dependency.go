package validator

import (
	"fmt"
	"strings"

	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/errors"
)

// validateDependencies checks a policy's declared dependencies against the
// view at activation time.
//
// Prerequisite edges require the referenced policy to exist and be active,
// and the prerequisite subgraph reachable from this policy must be acyclic.
// Conflict edges require the referenced policy to not be active. All
// findings here are hard errors that block activation; they are re-checked
// at each activation attempt because the view changes between attempts.
func (v *Validator) validateDependencies(policy *ast.Policy, view PolicyView, list *errors.List) {
	for _, dep := range policy.Dependencies {
		details := map[string]any{"policy": policy.ID, "depends_on": dep.DependsOn}

		switch dep.Type {
		case ast.DependencyPrerequisite:
			target, ok := view.PolicyByID(dep.DependsOn)
			if !ok {
				list.Add(errors.ErrorTypeDependency, errors.CodePrerequisiteMissing,
					fmt.Sprintf("prerequisite policy %q does not exist", dep.DependsOn), details)
				continue
			}
			if !target.IsActive() {
				list.Add(errors.ErrorTypeDependency, errors.CodePrerequisiteInactive,
					fmt.Sprintf("prerequisite policy %q is not active", dep.DependsOn), details)
			}

		case ast.DependencyConflict:
			if target, ok := view.PolicyByID(dep.DependsOn); ok && target.IsActive() {
				list.Add(errors.ErrorTypeDependency, errors.CodeConflictActive,
					fmt.Sprintf("conflicting policy %q is currently active", dep.DependsOn), details)
			}
		}
	}

	if cycle := findPrerequisiteCycle(policy, view); len(cycle) > 0 {
		list.Add(errors.ErrorTypeDependency, errors.CodeDependencyCycle,
			fmt.Sprintf("prerequisite cycle: %s", strings.Join(cycle, " -> ")),
			map[string]any{"policy": policy.ID})
	}
}

// findPrerequisiteCycle runs a DFS over prerequisite edges starting from the
// policy being activated and returns the first cycle found, or nil. The
// policy itself is taken from the argument rather than the view so the
// not-yet-registered version under activation is the one analyzed.
func findPrerequisiteCycle(policy *ast.Policy, view PolicyView) []string {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var dfs func(id string, prereqs []string, path []string) []string
	dfs = func(id string, prereqs []string, path []string) []string {
		visited[id] = true
		inStack[id] = true
		path = append(path, id)

		for _, next := range prereqs {
			if inStack[next] {
				return append(path, next)
			}
			if visited[next] {
				continue
			}
			target, ok := resolvePolicy(next, policy, view)
			if !ok {
				// Missing targets are reported separately.
				continue
			}
			if cycle := dfs(next, target.PrerequisiteIDs(), path); cycle != nil {
				return cycle
			}
		}

		inStack[id] = false
		return nil
	}

	return dfs(policy.ID, policy.PrerequisiteIDs(), nil)
}

// resolvePolicy prefers the in-flight policy over the view's stored copy.
func resolvePolicy(id string, activating *ast.Policy, view PolicyView) (*ast.Policy, bool) {
	if id == activating.ID {
		return activating, true
	}
	return view.PolicyByID(id)
}
