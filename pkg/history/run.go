package history

import (
	"context"
	"time"
)

// RunKind distinguishes what produced a history entry.
type RunKind string

const (
	// KindPolicy is a policy evaluation run.
	KindPolicy RunKind = "policy"

	// KindFeature is a feature toggle evaluation run.
	KindFeature RunKind = "feature"

	// KindBatch is a bulk moderation batch run.
	KindBatch RunKind = "batch"
)

// Run is one recorded evaluation.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Kind is what produced the run.
	Kind RunKind `json:"kind"`

	// SubjectID is the policy id, feature key or batch id evaluated.
	SubjectID string `json:"subject_id"`

	// Outcome is true when the policy triggered, feature was enabled
	// or the batch completed successfully.
	Outcome bool `json:"outcome"`

	// Reason is the machine-readable reason code for the outcome.
	Reason string `json:"reason,omitempty"`

	// Input is the evaluation context the run was executed against.
	Input map[string]any `json:"input,omitempty"`

	// Result holds the full serialized verdict, decision or summary.
	Result map[string]any `json:"result,omitempty"`

	// Timestamp is when the run was recorded.
	Timestamp time.Time `json:"timestamp"`

	// DurationMs is the evaluation wall time in milliseconds.
	DurationMs float64 `json:"duration_ms"`
}

// Query filters history runs.
type Query struct {
	Kind      RunKind
	SubjectID string
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

// Store persists evaluation runs. Delete exists so retention can prune
// old runs.
type Store interface {
	// Save records a run.
	Save(ctx context.Context, run *Run) error

	// List returns runs matching the query, newest first.
	List(ctx context.Context, query *Query) ([]*Run, error)

	// Count returns the number of runs matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes runs matching the query and returns how many
	// were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}
