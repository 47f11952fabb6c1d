// Package audit provides an append-only sink for verdicts, violations, and
// definition changes.
//
// Audit records are never mutated or deleted once written; the Storage
// interface deliberately exposes no update or delete operation. Verdict and
// simulation history, which may be pruned, lives in pkg/history instead.
//
// The Recorder writes asynchronously: RecordChange and RecordVerdict
// enqueue and return immediately, and a background worker drains the queue
// into storage. Close flushes the queue before returning.
//
// Two storage backends ship with the package: an in-memory store for tests
// and a SQLite store for single-instance deployments (see the storage
// subpackage).
package audit
