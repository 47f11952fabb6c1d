// Package harness runs what-if evaluations against candidate contexts.
//
// A Session wraps the evaluation engine and runs policies and feature
// toggles against supplied contexts without touching the audit trail.
// Draft definitions are evaluated as if they were active, so a policy
// can be exercised before promotion. Each session keeps a bounded ring
// of recent runs for inspection and can optionally persist runs to a
// history store.
package harness
