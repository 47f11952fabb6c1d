package validator

import (
	"fmt"

	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/errors"
)

// validateFeatureStructure checks a feature toggle's shape: key, strategy,
// rollout percentage range, audience criteria, and condition trees.
func (v *Validator) validateFeatureStructure(feature *ast.FeatureToggle, list *errors.List) {
	if feature.Key == "" {
		list.Add(errors.ErrorTypeValidation, errors.CodeMissingValue,
			"feature key is required", nil)
	}
	details := map[string]any{"feature": feature.Key}

	if !feature.Strategy.IsKnown() && feature.Strategy != "" {
		list.Add(errors.ErrorTypeConfiguration, errors.CodeUnknownStrategy,
			fmt.Sprintf("unknown rollout strategy %q", feature.Strategy), details)
	}

	switch feature.Strategy {
	case ast.RolloutPercentage:
		if feature.Percentage < 0 || feature.Percentage > 100 {
			list.Add(errors.ErrorTypeConfiguration, errors.CodePercentageRange,
				fmt.Sprintf("rollout percentage %d is outside 0-100", feature.Percentage), details)
		}

	case ast.RolloutUserGroup, ast.RolloutAttributes:
		if feature.Audience == nil || feature.Audience.Criteria == nil {
			list.Add(errors.ErrorTypeConfiguration, errors.CodeMissingAudience,
				fmt.Sprintf("strategy %q requires target audience criteria", feature.Strategy), details)
		}

	default:
		if feature.Percentage != 0 {
			list.AddWarning(errors.ErrorTypeConfiguration, errors.CodePercentageRange,
				fmt.Sprintf("rollout percentage is meaningless under strategy %q", feature.Strategy), details)
		}
	}

	if feature.Audience != nil && feature.Audience.Criteria != nil {
		v.validateConditionTree(feature.Audience.Criteria, details, list)
	}
	for _, cond := range feature.Conditions {
		v.validateConditionTree(cond, details, list)
	}

	for _, dep := range feature.Dependencies {
		if dep == feature.Key {
			list.Add(errors.ErrorTypeDependency, errors.CodeDependencyCycle,
				"feature cannot depend on itself", details)
		}
	}
}
