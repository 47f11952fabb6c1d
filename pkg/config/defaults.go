package config

import "time"

// Default values applied by ApplyDefaults.
const (
	// DefaultDebounceInterval is the default watcher debounce quiet period.
	DefaultDebounceInterval = 100 * time.Millisecond

	// DefaultEnvironment is the default evaluation environment.
	DefaultEnvironment = "production"

	// DefaultAuditBackend is the default audit storage backend.
	DefaultAuditBackend = BackendMemory

	// DefaultAuditAsyncBuffer is the default audit write channel size.
	DefaultAuditAsyncBuffer = 1000

	// DefaultAuditWriteTimeout is the default per-record write timeout.
	DefaultAuditWriteTimeout = 5 * time.Second

	// DefaultHistoryBackend is the default history storage backend.
	DefaultHistoryBackend = BackendMemory

	// DefaultHistoryBusyTimeout is the default SQLite busy timeout.
	DefaultHistoryBusyTimeout = 5 * time.Second

	// DefaultRetentionDays is the default run history retention in days.
	DefaultRetentionDays = 30

	// DefaultPruneSchedule is the default retention cron schedule.
	DefaultPruneSchedule = "0 3 * * *"

	// DefaultRunCapacity is the default simulation run ring size.
	DefaultRunCapacity = 10

	// DefaultBatchWorkers is the default batch worker count (sequential).
	DefaultBatchWorkers = 1

	// DefaultBatchMaxItems is the default and maximum batch size.
	DefaultBatchMaxItems = 500

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "text"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and
// safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Definitions defaults
	if cfg.Definitions.DebounceInterval == 0 {
		cfg.Definitions.DebounceInterval = DefaultDebounceInterval
	}

	// Engine defaults
	if cfg.Engine.Environment == "" {
		cfg.Engine.Environment = DefaultEnvironment
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = DefaultHistoryBusyTimeout
	}
	if cfg.History.Retention.RetentionDays == 0 {
		cfg.History.Retention.RetentionDays = DefaultRetentionDays
	}
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultPruneSchedule
	}

	// Simulation defaults
	if cfg.Simulation.RunCapacity == 0 {
		cfg.Simulation.RunCapacity = DefaultRunCapacity
	}

	// Batch defaults
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}
	if cfg.Batch.MaxItems == 0 {
		cfg.Batch.MaxItems = DefaultBatchMaxItems
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
}
