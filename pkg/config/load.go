package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention VERDICT_SECTION_FIELD (e.g., VERDICT_DEFINITIONS_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format VERDICT_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Definitions overrides
	if val := os.Getenv("VERDICT_DEFINITIONS_PATH"); val != "" {
		cfg.Definitions.Path = val
	}
	if val := os.Getenv("VERDICT_DEFINITIONS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Definitions.Watch = b
		}
	}
	if val := os.Getenv("VERDICT_DEFINITIONS_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Definitions.DebounceInterval = d
		}
	}

	// Engine overrides
	if val := os.Getenv("VERDICT_ENGINE_ENVIRONMENT"); val != "" {
		cfg.Engine.Environment = val
	}

	// Audit overrides
	if val := os.Getenv("VERDICT_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("VERDICT_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("VERDICT_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("VERDICT_AUDIT_ASYNC_BUFFER"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.AsyncBuffer = i
		}
	}
	if val := os.Getenv("VERDICT_AUDIT_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.WriteTimeout = d
		}
	}

	// History overrides
	if val := os.Getenv("VERDICT_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("VERDICT_HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = val
	}
	if val := os.Getenv("VERDICT_HISTORY_DB_PATH"); val != "" {
		cfg.History.DBPath = val
	}
	if val := os.Getenv("VERDICT_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.Retention.RetentionDays = i
		}
	}
	if val := os.Getenv("VERDICT_HISTORY_MAX_RUNS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.History.Retention.MaxRuns = i
		}
	}
	if val := os.Getenv("VERDICT_HISTORY_PRUNE_SCHEDULE"); val != "" {
		cfg.History.Retention.PruneSchedule = val
	}

	// Simulation overrides
	if val := os.Getenv("VERDICT_SIMULATION_RUN_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Simulation.RunCapacity = i
		}
	}

	// Batch overrides
	if val := os.Getenv("VERDICT_BATCH_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Batch.Workers = i
		}
	}
	if val := os.Getenv("VERDICT_BATCH_MAX_ITEMS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Batch.MaxItems = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("VERDICT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VERDICT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VERDICT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
