package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "audit.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is
// valid. All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDefinitions(&cfg.Definitions)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateSimulation(&cfg.Simulation)...)
	errs = append(errs, validateBatch(&cfg.Batch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateDefinitions(cfg *DefinitionsConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "definitions.watch",
			Message: "watch mode requires definitions.path to be set",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "definitions.debounce_interval",
			Message: "must not be negative",
		})
	}
	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case BackendMemory:
	case BackendSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, FieldError{
				Field:   "audit.db_path",
				Message: "required when backend is sqlite",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q (expected %q or %q)", cfg.Backend, BackendMemory, BackendSQLite),
		})
	}

	if cfg.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.async_buffer",
			Message: "must be at least 1",
		})
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.write_timeout",
			Message: "must be positive",
		})
	}
	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case BackendMemory:
	case BackendSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, FieldError{
				Field:   "history.db_path",
				Message: "required when backend is sqlite",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("unknown backend %q (expected %q or %q)", cfg.Backend, BackendMemory, BackendSQLite),
		})
	}

	if cfg.BusyTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "history.busy_timeout",
			Message: "must be positive",
		})
	}
	if cfg.Retention.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention.retention_days",
			Message: "must not be negative",
		})
	}
	if cfg.Retention.MaxRuns < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention.max_runs",
			Message: "must not be negative",
		})
	}
	return errs
}

func validateSimulation(cfg *SimulationConfig) []FieldError {
	var errs []FieldError

	if cfg.RunCapacity < 1 {
		errs = append(errs, FieldError{
			Field:   "simulation.run_capacity",
			Message: "must be at least 1",
		})
	}
	return errs
}

func validateBatch(cfg *BatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "batch.workers",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxItems < 1 {
		errs = append(errs, FieldError{
			Field:   "batch.max_items",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxItems > DefaultBatchMaxItems {
		errs = append(errs, FieldError{
			Field:   "batch.max_items",
			Message: fmt.Sprintf("cannot exceed %d", DefaultBatchMaxItems),
		})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (expected text or json)", cfg.Logging.Format),
		})
	}
	return errs
}
