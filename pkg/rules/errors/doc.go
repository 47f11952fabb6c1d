// Package errors provides structured error types for definition validation
// and engine boundaries.
//
// Errors cross the engine boundary as structured values with a type, a
// stable code, a message, and optional details. They are accumulated in an
// ErrorList so validation reports every problem in one pass instead of
// failing on the first.
//
// # Error Types
//
// ErrorTypeValidation: malformed rule, condition, or action caught at
// activation time. Blocking.
//
// ErrorTypeDependency: dependency cycle or unmet prerequisite at activation
// time. Blocking.
//
// ErrorTypeConfiguration: invalid regex, rollout percentage out of range,
// malformed NOT node. Blocking, caught at validate time.
//
// ErrorTypeEvaluation: evaluation-time diagnostic (missing field, unknown
// operator). Never blocking; attached to verdicts, never thrown.
//
// ErrorTypeBatch: isolated per-item failure inside a bulk operation.
//
// # Warnings
//
// Validators also emit warnings (for example, logically contradictory rule
// pairs). Warnings surface alongside errors but never block activation;
// ErrorList.Blocking separates the two.
//
// # Usage
//
//	errs := errors.NewList()
//	errs.Add(errors.ErrorTypeConfiguration, errors.CodeInvalidRegex,
//	    "invalid pattern", map[string]any{"rule": rule.ID})
//	if errs.HasBlocking() {
//	    return errs.ToError()
//	}
package errors
