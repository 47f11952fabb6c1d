package registry

import (
	"errors"
	"fmt"
)

// Error represents a registry operation failure.
type Error struct {
	EntityID  string // Policy id or feature key, if known
	Operation string // Operation that failed ("save", "activate", ...)
	Message   string
	NotFound  bool // true when the entity does not exist
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("registry %s failed for %q: %s", e.Operation, e.EntityID, e.Message)
	}
	return fmt.Sprintf("registry %s failed: %s", e.Operation, e.Message)
}

// IsNotFound reports whether err is a registry error for a missing policy
// or feature.
func IsNotFound(err error) bool {
	var regErr *Error
	return errors.As(err, &regErr) && regErr.NotFound
}

func newError(operation, entityID, format string, args ...any) *Error {
	return &Error{
		EntityID:  entityID,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

func newNotFoundError(operation, entityID string) *Error {
	return &Error{
		EntityID:  entityID,
		Operation: operation,
		Message:   "not found",
		NotFound:  true,
	}
}
