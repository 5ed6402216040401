package app

import (
	"encoding/json"
	"fmt"
	"os"

	"blocksgraph/internal/domain"
)

// ============================================================
// Import / export
// ============================================================

// ExportGraph writes the current graph as JSON to the given path. When
// the path is the watched snapshot file, the write is fingerprinted so
// it doesn't bounce back as an import.
func (a *App) ExportGraph(path string) error {
	snap := a.graph.Snapshot()
	if a.watcher != nil && path == a.cfg.Persist.SnapshotPath {
		return a.watcher.WriteSnapshot(snap)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportGraph replaces the whole graph with the snapshot at path.
func (a *App) ImportGraph(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if err := a.graph.Restore(snap); err != nil {
		return err
	}
	a.history.Push("import", a.graph.Snapshot())
	return nil
}
