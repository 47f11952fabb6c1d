package config

import "time"

// Storage backend names accepted by the audit and history sections.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure for Verdict. It contains all
// configuration sections for definition loading, the evaluation engine,
// audit recording, run history, simulation, batch execution, and telemetry.
type Config struct {
	// Definitions contains configuration for loading policy and feature
	// definition files, including the source path and watch mode.
	Definitions DefinitionsConfig `yaml:"definitions"`

	// Engine contains evaluation engine configuration.
	Engine EngineConfig `yaml:"engine"`

	// Audit contains configuration for the audit trail including backend
	// selection and async write behavior.
	Audit AuditConfig `yaml:"audit"`

	// History contains configuration for persisted evaluation run history
	// including backend selection and retention.
	History HistoryConfig `yaml:"history"`

	// Simulation contains configuration for simulation sessions.
	Simulation SimulationConfig `yaml:"simulation"`

	// Batch contains configuration for bulk operation execution.
	Batch BatchConfig `yaml:"batch"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefinitionsConfig controls where policy and feature definitions are
// loaded from.
type DefinitionsConfig struct {
	// Path is the YAML definition file or directory to load at startup.
	// Empty means no file source; definitions are registered through the
	// API only.
	Path string `yaml:"path"`

	// Watch enables hot reloading when files under Path change.
	// Requires Path to be set.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires after a
	// burst of file change events.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// EngineConfig contains evaluation engine configuration.
type EngineConfig struct {
	// Environment is the deployment environment the engine evaluates in.
	// Definitions scoped to a different environment are skipped.
	// Default: "production"
	Environment string `yaml:"environment"`
}

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	// Enabled enables audit recording. A disabled recorder drops records
	// silently.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the audit storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database file path. Required when Backend is
	// "sqlite".
	DBPath string `yaml:"db_path"`

	// AsyncBuffer is the size of the async write channel buffer. Records
	// are dropped with a warning when the buffer is full.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a single record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// HistoryConfig contains configuration for persisted run history.
type HistoryConfig struct {
	// Enabled enables run history persistence.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the history storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database file path. Required when Backend is
	// "sqlite".
	DBPath string `yaml:"db_path"`

	// BusyTimeout is how long SQLite waits for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Retention controls automatic pruning of old runs.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls automatic run history pruning.
type RetentionConfig struct {
	// RetentionDays is the number of days to keep runs. 0 disables age
	// pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRuns is the maximum number of runs to keep. 0 means unlimited.
	// Default: 0
	MaxRuns int64 `yaml:"max_runs"`

	// PruneSchedule is a cron expression scheduling automatic pruning.
	// Empty disables the scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// SimulationConfig contains configuration for simulation sessions.
type SimulationConfig struct {
	// RunCapacity is how many recent simulation runs a session retains.
	// Default: 10
	RunCapacity int `yaml:"run_capacity"`
}

// BatchConfig contains configuration for bulk operation execution.
type BatchConfig struct {
	// Workers is the worker pool size for parallel batch execution.
	// 1 selects the sequential executor.
	// Default: 1
	Workers int `yaml:"workers"`

	// MaxItems caps the number of targets accepted per batch. Cannot
	// exceed 500.
	// Default: 500
	MaxItems int `yaml:"max_items"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled enables engine metrics collection.
	// Default: false
	Enabled bool `yaml:"enabled"`
}
