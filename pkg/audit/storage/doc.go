// Package storage provides persistence backends for audit records.
//
// Two implementations are available:
//
//   - MemoryStorage: in-memory map, intended for tests.
//   - SQLiteStorage: durable file-backed storage with WAL mode.
//
// Both backends are strictly append-only. There is no update or delete
// path for stored records.
package storage
