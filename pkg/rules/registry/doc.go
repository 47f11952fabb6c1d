// Package registry provides thread-safe in-memory storage for policies
// and feature toggles, with lifecycle management on top.
//
// The registry is the single writer for definitions: every mutation
// bumps the definition version, status transitions are checked against
// the lifecycle state machine, and activation is gated by the full
// validation pass including the dependency graph. Reads hand out deep
// clones so callers can never corrupt registered definitions.
//
// The registry implements engine.FeatureSource and validator.PolicyView,
// so it can be plugged directly into evaluation and validation.
package registry
