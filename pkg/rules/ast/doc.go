// Package ast defines the declarative definition model for the verdict
// engine: policies, rules, condition trees, actions, dependencies, and
// feature toggles.
//
// Definitions are plain data. They carry no behavior beyond structural
// helpers; evaluation lives in pkg/rules/engine and static checking in
// pkg/rules/validator.
//
// # Condition Trees
//
// Conditions form a tree of ConditionNode values. A node is either a leaf
// (field, operator, value) or a composite that combines its children with a
// logical operator (AND, OR, NOT). A node that carries both a leaf predicate
// and children combines the two with the same logical operator. NOT nodes
// must have exactly one child; the validator rejects anything else before a
// definition can be activated.
//
// # Lifecycle
//
// Policies and feature toggles are created as drafts, edited while inactive
// or in testing (each mutation increments Version), and promoted to active
// only after passing validation. The registry in pkg/rules/registry enforces
// these transitions; the types here only record them.
//
// # Immutability During Evaluation
//
// The engine evaluates against snapshots obtained via Clone. Callers must
// not mutate a definition that is concurrently being evaluated.
package ast
