// Verdict is a rule-based policy and feature toggle evaluation engine for
// marketplace moderation and progressive rollouts.
//
// It evaluates declarative policy definitions against runtime contexts,
// providing:
//   - Condition-tree rule evaluation with a rich operator library
//   - Deterministic percentage-based feature rollouts
//   - Dependency and conflict validation at activation time
//   - Simulation of definitions against sample contexts
//   - An immutable audit trail of definition changes and evaluations
//
// Usage:
//
//	# Validate definition files
//	verdict lint --file definitions.yaml
//
//	# Simulate a policy against a context
//	verdict simulate --definitions defs/ --policy spam-screening --context ctx.yaml
//
//	# Simulate a feature toggle
//	verdict simulate --definitions defs/ --feature new-search --context ctx.yaml
//
//	# Show version information
//	verdict version
//
// For complete documentation, see: https://github.com/offerhub/verdict
package main

func main() {
	Execute()
}
