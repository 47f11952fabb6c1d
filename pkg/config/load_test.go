package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
definitions:
  path: /etc/verdict/definitions
  watch: true
engine:
  environment: staging
audit:
  enabled: true
  backend: sqlite
  db_path: /var/lib/verdict/audit.db
history:
  enabled: true
  backend: sqlite
  db_path: /var/lib/verdict/history.db
  retention:
    retention_days: 7
    max_runs: 1000
batch:
  workers: 4
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Definitions.Path != "/etc/verdict/definitions" {
		t.Errorf("unexpected definitions path: %q", cfg.Definitions.Path)
	}
	if !cfg.Definitions.Watch {
		t.Error("expected watch enabled")
	}
	if cfg.Engine.Environment != "staging" {
		t.Errorf("unexpected environment: %q", cfg.Engine.Environment)
	}
	if cfg.Audit.Backend != BackendSQLite {
		t.Errorf("unexpected audit backend: %q", cfg.Audit.Backend)
	}
	if cfg.History.Retention.RetentionDays != 7 {
		t.Errorf("unexpected retention days: %d", cfg.History.Retention.RetentionDays)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("unexpected batch workers: %d", cfg.Batch.Workers)
	}
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Engine.Environment != DefaultEnvironment {
		t.Errorf("expected default environment, got %q", cfg.Engine.Environment)
	}
	if cfg.Audit.Backend != BackendMemory {
		t.Errorf("expected memory audit backend, got %q", cfg.Audit.Backend)
	}
	if cfg.Audit.AsyncBuffer != DefaultAuditAsyncBuffer {
		t.Errorf("expected default async buffer, got %d", cfg.Audit.AsyncBuffer)
	}
	if cfg.Audit.WriteTimeout != DefaultAuditWriteTimeout {
		t.Errorf("expected default write timeout, got %s", cfg.Audit.WriteTimeout)
	}
	if cfg.Definitions.DebounceInterval != DefaultDebounceInterval {
		t.Errorf("expected default debounce, got %s", cfg.Definitions.DebounceInterval)
	}
	if cfg.History.Retention.PruneSchedule != DefaultPruneSchedule {
		t.Errorf("expected default prune schedule, got %q", cfg.History.Retention.PruneSchedule)
	}
	if cfg.Simulation.RunCapacity != DefaultRunCapacity {
		t.Errorf("expected default run capacity, got %d", cfg.Simulation.RunCapacity)
	}
	if cfg.Batch.Workers != DefaultBatchWorkers || cfg.Batch.MaxItems != DefaultBatchMaxItems {
		t.Errorf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfigFile(t, "definitions: [broken\n")); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("VERDICT_ENGINE_ENVIRONMENT", "development")
	t.Setenv("VERDICT_AUDIT_BACKEND", "sqlite")
	t.Setenv("VERDICT_AUDIT_DB_PATH", "/tmp/audit.db")
	t.Setenv("VERDICT_AUDIT_WRITE_TIMEOUT", "2s")
	t.Setenv("VERDICT_BATCH_WORKERS", "8")
	t.Setenv("VERDICT_DEFINITIONS_WATCH", "false")

	cfg, err := LoadConfigWithEnvOverrides(writeConfigFile(t, `
definitions:
  path: /etc/verdict/definitions
  watch: true
engine:
  environment: staging
`))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides error: %v", err)
	}

	if cfg.Engine.Environment != "development" {
		t.Errorf("env override lost: %q", cfg.Engine.Environment)
	}
	if cfg.Audit.Backend != BackendSQLite || cfg.Audit.DBPath != "/tmp/audit.db" {
		t.Errorf("audit overrides lost: %+v", cfg.Audit)
	}
	if cfg.Audit.WriteTimeout != 2*time.Second {
		t.Errorf("duration override lost: %s", cfg.Audit.WriteTimeout)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("batch override lost: %d", cfg.Batch.Workers)
	}
	if cfg.Definitions.Watch {
		t.Error("boolean override lost")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	t.Setenv("VERDICT_AUDIT_BACKEND", "postgres")

	if _, err := LoadConfigWithEnvOverrides(writeConfigFile(t, "{}\n")); err == nil {
		t.Error("expected validation to fail after override")
	}
}
