package audit

import (
	"context"
	"time"
)

// EntityType identifies what kind of entity a record is about.
type EntityType string

const (
	EntityPolicy  EntityType = "policy"
	EntityFeature EntityType = "feature"
	EntityVerdict EntityType = "verdict"
	EntityBatch   EntityType = "batch"
)

// Actions recorded against entities.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionActivated   = "activated"
	ActionDeactivated = "deactivated"
	ActionDeprecated  = "deprecated"
	ActionEvaluated   = "evaluated"
	ActionViolation   = "violation"
	ActionBatchItem   = "batch_item"
)

// Record is one append-only audit entry. Before and After hold definition
// snapshots for change records; Details carries record-specific data such as
// a serialized verdict.
type Record struct {
	ID         string         `json:"id"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	Timestamp  time.Time      `json:"timestamp"`
	Before     any            `json:"before,omitempty"`
	After      any            `json:"after,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Query filters audit reads. Zero values match everything.
type Query struct {
	EntityType EntityType
	EntityID   string
	Action     string
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// Storage is the append-only persistence port for audit records. There is
// intentionally no update or delete.
type Storage interface {
	// Append persists a record. Implementations must not modify existing
	// records.
	Append(ctx context.Context, record *Record) error

	// List returns records matching the query, newest first. A nil query
	// matches everything.
	List(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Close releases storage resources.
	Close() error
}
