package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/offerhub/verdict/pkg/rules/registry"
)

const definitionsYAML = `
verdict_version: "1"
policies:
  - id: dependent
    name: Dependent policy
    status: active
    active: true
    dependencies:
      - policy_id: dependent
        depends_on: base
        type: prerequisite
    rules:
      - id: r1
        field: listing.flag_count
        operator: greater_than
        value: 3
        active: true
  - id: base
    name: Base policy
    status: active
    active: true
    rules:
      - id: r1
        field: listing.reported
        operator: equals
        value: true
        active: true
features:
  - key: instant-payout
    active: true
    rollout_strategy: percentage
    rollout_percentage: 40
`

func writeDefinitions(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileSource_Load(t *testing.T) {
	path := writeDefinitions(t, t.TempDir(), "defs.yaml", definitionsYAML)

	reg := registry.New()
	src := NewFileSource(path)
	if err := src.Load(reg, "loader"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if reg.PolicyCount() != 2 {
		t.Errorf("expected 2 policies, got %d", reg.PolicyCount())
	}

	// "dependent" is listed before its prerequisite "base" yet both
	// must end up active.
	for _, id := range []string{"base", "dependent"} {
		policy, ok := reg.PolicyByID(id)
		if !ok {
			t.Fatalf("policy %s not registered", id)
		}
		if !policy.IsActive() {
			t.Errorf("policy %s not active after load", id)
		}
	}

	feature, ok := reg.FeatureByKey("instant-payout")
	if !ok {
		t.Fatal("feature not registered")
	}
	if !feature.Active || feature.Percentage != 40 {
		t.Errorf("unexpected feature state: active=%v percentage=%d",
			feature.Active, feature.Percentage)
	}
}

func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDefinitions(t, dir, "a.yaml", "policies:\n  - id: p1\n    status: draft\n")
	writeDefinitions(t, dir, "b.yaml", "features:\n  - key: f1\n    rollout_strategy: immediate\n")

	reg := registry.New()
	if err := NewFileSource(dir).Load(reg, "loader"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reg.PolicyCount() != 1 || reg.FeatureCount() != 1 {
		t.Errorf("expected 1 policy and 1 feature, got %d and %d",
			reg.PolicyCount(), reg.FeatureCount())
	}
}

func TestFileSource_MissingPath(t *testing.T) {
	reg := registry.New()
	if err := NewFileSource("/nonexistent/defs.yaml").Load(reg, "loader"); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestWatcher_TriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinitions(t, dir, "defs.yaml", "policies:\n  - id: p1\n    status: draft\n")

	config := DefaultWatcherConfig()
	config.Path = dir
	config.DebounceInterval = 20 * time.Millisecond

	w, err := NewWatcher(config)
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("policies:\n  - id: p2\n    status: draft\n"), 0o644); err != nil {
		t.Fatalf("rewrite definitions: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload not triggered after file change")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop error: %v", err)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeDefinitions(t, dir, "defs.yaml", "policies: []\n")

	config := DefaultWatcherConfig()
	config.Path = dir
	config.DebounceInterval = 20 * time.Millisecond

	w, err := NewWatcher(config)
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)

	writeDefinitions(t, dir, "notes.txt", "not definitions")

	select {
	case <-reloaded:
		t.Error("reload triggered for non-definition file")
	case <-time.After(300 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop error: %v", err)
	}
}
