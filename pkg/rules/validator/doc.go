// Package validator performs static analysis over policy and feature
// definitions before they are allowed to run.
//
// Validation runs at activation time only, never per evaluation. It is
// organized as passes, each of which accumulates structured errors and
// warnings into one list:
//
// Structural: operator/value type compatibility, NOT node arity, regex
// compilation, rollout percentage range, action parameter decoding, status
// invariants, duplicate ids. Errors here block activation.
//
// Conflict detection: a pairwise scan of rules sharing a field that flags
// logically contradictory operator pairs (equals vs not_equals on the same
// value, greater_than X vs less_than Y with X >= Y). Findings are warnings
// and never block. The scan is O(n^2) over a policy's rules, which is
// acceptable because rule sets are small.
//
// Dependency graph: prerequisite edges must point at existing, active
// policies; cyclic prerequisite chains are a hard error; conflict edges
// forbid the two policies from being active simultaneously. These checks
// need a view of the other policies and therefore run through
// ValidateActivation.
//
// The validator is pure: validating an unmodified definition twice returns
// identical lists, in identical order.
package validator
