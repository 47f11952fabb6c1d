package config

import "testing"

func TestSetAndGetConfig(t *testing.T) {
	old := GetConfig()
	t.Cleanup(func() { SetConfig(old) })

	cfg := validConfig()
	cfg.Engine.Environment = "test"
	SetConfig(cfg)

	got := GetConfig()
	if got == nil {
		t.Fatal("expected a config instance")
	}
	if got.Engine.Environment != "test" {
		t.Errorf("unexpected environment: %q", got.Engine.Environment)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	old := GetConfig()
	t.Cleanup(func() { SetConfig(old) })

	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("expected MustGetConfig to panic without initialization")
		}
	}()
	MustGetConfig()
}

func TestReloadConfig(t *testing.T) {
	old := GetConfig()
	t.Cleanup(func() { SetConfig(old) })

	path := writeConfigFile(t, "engine:\n  environment: reloaded\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig error: %v", err)
	}
	if got := GetConfig(); got.Engine.Environment != "reloaded" {
		t.Errorf("reload did not replace config: %q", got.Engine.Environment)
	}

	// A failed reload leaves the current config in place.
	if err := ReloadConfig(path + ".missing"); err == nil {
		t.Fatal("expected reload of a missing file to fail")
	}
	if got := GetConfig(); got.Engine.Environment != "reloaded" {
		t.Error("failed reload must not replace config")
	}
}
