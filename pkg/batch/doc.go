// Package batch executes one moderation operation across many targets.
//
// Each target is processed in isolation: a missing target or a failed
// operation never aborts the rest of the batch. The sequential executor
// processes targets in order; the pool executor fans out across a
// bounded number of workers behind the same interface. Both report a
// per-target breakdown plus an aggregate summary.
package batch
