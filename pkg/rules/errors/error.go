package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes where in the lifecycle an error arises.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"    // malformed rule/condition/action at activation
	ErrorTypeDependency    ErrorType = "dependency"    // cycle or unmet prerequisite at activation
	ErrorTypeConfiguration ErrorType = "configuration" // invalid regex, bad percentage, malformed NOT node
	ErrorTypeEvaluation    ErrorType = "evaluation"    // evaluation-time diagnostic, never blocking
	ErrorTypeBatch         ErrorType = "batch"         // isolated per-item batch failure
)

// Stable error codes. Collaborators dispatch on these, never on messages.
const (
	CodeUnknownOperator     = "unknown_operator"
	CodeOperatorTypeMismatch = "operator_type_mismatch"
	CodeInvalidRegex        = "invalid_regex"
	CodeNotArity            = "not_arity"
	CodeMissingField        = "missing_field"
	CodeMissingValue        = "missing_value"
	CodeInvalidAction       = "invalid_action"
	CodeDuplicateID         = "duplicate_id"
	CodeRuleConflict        = "rule_conflict"
	CodePercentageRange     = "rollout_percentage_range"
	CodeUnknownStrategy     = "unknown_rollout_strategy"
	CodeMissingAudience     = "missing_target_audience"
	CodeDependencyCycle     = "dependency_cycle"
	CodePrerequisiteMissing = "prerequisite_missing"
	CodePrerequisiteInactive = "prerequisite_inactive"
	CodeConflictActive      = "conflict_active"
	CodeUnknownDependency   = "unknown_dependency_type"
	CodeStatusInvariant     = "status_invariant"
)

// Severity distinguishes blocking errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is a structured error value with a stable code and optional details.
type Error struct {
	Type     ErrorType      `json:"type"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	Severity Severity       `json:"severity"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("[%s/%s] %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s/%s] %s %v", e.Type, e.Code, e.Message, e.Details)
}

// IsBlocking reports whether the error blocks activation.
func (e *Error) IsBlocking() bool {
	return e.Severity != SeverityWarning
}

// List accumulates errors and warnings from a validation pass.
type List struct {
	Errors []*Error
}

// NewList returns an empty error list.
func NewList() *List {
	return &List{Errors: make([]*Error, 0)}
}

// Add appends a blocking error.
func (l *List) Add(errType ErrorType, code, message string, details map[string]any) {
	l.Errors = append(l.Errors, &Error{
		Type:     errType,
		Code:     code,
		Message:  message,
		Details:  details,
		Severity: SeverityError,
	})
}

// AddWarning appends a non-blocking warning.
func (l *List) AddWarning(errType ErrorType, code, message string, details map[string]any) {
	l.Errors = append(l.Errors, &Error{
		Type:     errType,
		Code:     code,
		Message:  message,
		Details:  details,
		Severity: SeverityWarning,
	})
}

// Append merges another list into this one, preserving order.
func (l *List) Append(other *List) {
	if other == nil {
		return
	}
	l.Errors = append(l.Errors, other.Errors...)
}

// Blocking returns only the blocking errors.
func (l *List) Blocking() []*Error {
	var blocking []*Error
	for _, err := range l.Errors {
		if err.IsBlocking() {
			blocking = append(blocking, err)
		}
	}
	return blocking
}

// Warnings returns only the warnings.
func (l *List) Warnings() []*Error {
	var warnings []*Error
	for _, err := range l.Errors {
		if !err.IsBlocking() {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// HasBlocking reports whether any blocking error is present.
func (l *List) HasBlocking() bool {
	for _, err := range l.Errors {
		if err.IsBlocking() {
			return true
		}
	}
	return false
}

// Count returns the total number of entries, warnings included.
func (l *List) Count() int {
	return len(l.Errors)
}

// HasType reports whether the list contains an entry of the given type.
func (l *List) HasType(errType ErrorType) bool {
	for _, err := range l.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// Error implements the error interface over the whole list.
func (l *List) Error() string {
	if len(l.Errors) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d problem(s):\n", len(l.Errors))
	for i, err := range l.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ToError returns nil when the list has no blocking errors, otherwise the
// list itself. Warnings alone never produce an error.
func (l *List) ToError() error {
	if !l.HasBlocking() {
		return nil
	}
	return l
}
