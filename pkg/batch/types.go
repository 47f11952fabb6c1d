package batch

import (
	"context"
	"errors"
)

// MaxBatchSize is the hard cap on targets per batch.
const MaxBatchSize = 500

// Sentinel errors a Handler returns to classify a target failure.
var (
	// ErrNotFound marks a target that does not exist. The item is
	// counted as failed with a not_found kind.
	ErrNotFound = errors.New("target not found")

	// ErrPermissionDenied marks an operation the actor may not perform
	// on this target.
	ErrPermissionDenied = errors.New("permission denied")
)

// ItemStatus is the outcome of one batch item.
type ItemStatus string

const (
	StatusSuccess ItemStatus = "success"
	StatusFailed  ItemStatus = "failed"
	StatusSkipped ItemStatus = "skipped"
)

// FailureKind classifies why an item did not succeed.
type FailureKind string

const (
	FailureNotFound         FailureKind = "not_found"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureOperationError   FailureKind = "operation_error"
	FailureCancelled        FailureKind = "cancelled"
)

// Request describes one batch.
type Request struct {
	// ID identifies the batch in results and audit records.
	ID string

	// Operation is the moderation operation to apply, e.g. "suspend",
	// "flag", "restore".
	Operation string

	// TargetIDs are the entities to apply the operation to.
	TargetIDs []string

	// Actor is who requested the batch.
	Actor string

	// Params are passed through to the handler unchanged.
	Params map[string]any
}

// ItemResult is the outcome for a single target.
type ItemResult struct {
	TargetID string      `json:"target_id"`
	Status   ItemStatus  `json:"status"`
	Failure  FailureKind `json:"failure,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Summary aggregates a finished batch.
type Summary struct {
	BatchID    string        `json:"batch_id"`
	Operation  string        `json:"operation"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`

	// Success is true when at least one target succeeded.
	Success bool `json:"success"`

	Items []*ItemResult `json:"items"`
}

// Handler applies the operation to one target. Returning ErrNotFound or
// ErrPermissionDenied classifies the failure; any other error counts as
// an operation error.
type Handler interface {
	Apply(ctx context.Context, operation, targetID string, params map[string]any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, operation, targetID string, params map[string]any) error

// Apply implements Handler.
func (f HandlerFunc) Apply(ctx context.Context, operation, targetID string, params map[string]any) error {
	return f(ctx, operation, targetID, params)
}

// Executor runs a batch to completion.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Summary, error)
}
