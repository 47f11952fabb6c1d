// Package history stores evaluation run history for later inspection.
//
// Unlike audit records, run history is operational data: it can be
// pruned by age or by count, and a cron-driven scheduler runs the
// pruner automatically. Two backends are provided, an in-memory store
// for tests and a SQLite store for durable deployments.
package history
