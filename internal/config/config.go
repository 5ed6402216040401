package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds blocksgraph host configuration.
type Config struct {
	Graph   GraphConfig   `toml:"graph"`
	Snap    SnapConfig    `toml:"snap"`
	Persist PersistConfig `toml:"persist"`
}

// GraphConfig controls connection policy.
type GraphConfig struct {
	AllowSelfLoop      bool `toml:"allow_self_loop"`
	AllowParallelEdges bool `toml:"allow_parallel_edges"`
}

// SnapConfig controls grid snapping of gestures.
type SnapConfig struct {
	Enabled  bool    `toml:"enabled"`
	GridSize float64 `toml:"grid_size"`
}

// PersistConfig controls the SQLite mirror and snapshot export.
type PersistConfig struct {
	DBPath         string `toml:"db_path"`         // empty: <data dir>/graph.db
	SnapshotPath   string `toml:"snapshot_path"`   // empty: snapshot export disabled
	CheckpointCron string `toml:"checkpoint_cron"` // robfig/cron spec
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{},
		Snap:  SnapConfig{Enabled: true, GridSize: 30},
		Persist: PersistConfig{
			CheckpointCron: "@every 5m",
		},
	}
}

// ConfigDir returns the blocksgraph config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "blocksgraph")
}

// DataDir returns the directory for the SQLite mirror.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "blocksgraph")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, falling back to defaults if it doesn't
// exist or doesn't parse.
func Load() *Config {
	cfg := Default()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
