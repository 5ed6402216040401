package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graph.AllowSelfLoop || cfg.Graph.AllowParallelEdges {
		t.Error("default policy should forbid self-loops and parallel edges")
	}
	if !cfg.Snap.Enabled {
		t.Error("default snapping should be enabled")
	}
	if cfg.Snap.GridSize != 30 {
		t.Errorf("expected grid size 30, got %v", cfg.Snap.GridSize)
	}
	if cfg.Persist.CheckpointCron != "@every 5m" {
		t.Errorf("expected checkpoint schedule '@every 5m', got %q", cfg.Persist.CheckpointCron)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := ConfigDir(); got != "/tmp/test-xdg/blocksgraph" {
		t.Errorf("ConfigDir() = %q", got)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Load()
	if cfg.Snap.GridSize != 30 {
		t.Errorf("missing config must yield defaults, got %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "blocksgraph", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "[graph]\nallow_self_loop = true\n\n[snap]\nenabled = false\ngrid_size = 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if !cfg.Graph.AllowSelfLoop {
		t.Error("allow_self_loop not applied")
	}
	if cfg.Snap.Enabled || cfg.Snap.GridSize != 10 {
		t.Errorf("snap overrides not applied: %+v", cfg.Snap)
	}
	// Untouched sections keep their defaults.
	if cfg.Persist.CheckpointCron != "@every 5m" {
		t.Errorf("default lost on partial config: %q", cfg.Persist.CheckpointCron)
	}
}
