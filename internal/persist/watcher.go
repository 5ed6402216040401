package persist

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"blocksgraph/internal/domain"
)

// SnapshotHandler receives the parsed snapshot when the watched file
// changes on disk.
type SnapshotHandler func(domain.Snapshot)

// Watcher watches an exported snapshot file for external edits. When
// another program rewrites the file, the watcher parses it and hands
// the snapshot to the handler for re-import. Writes made through
// WriteSnapshot are fingerprinted and skipped, so exporting does not
// bounce back as an import.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange SnapshotHandler
	path     string

	mu       sync.Mutex
	lastHash [32]byte
}

// NewWatcher starts watching the snapshot file at path. The file does
// not have to exist yet; its directory does.
func NewWatcher(path string, onChange SnapshotHandler) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory; fsnotify watches dirs for file events.
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{watcher: fw, onChange: onChange, path: absPath}
	go w.watchLoop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// WriteSnapshot exports the snapshot to the watched file and records
// its fingerprint so the resulting write event is ignored.
func (w *Watcher) WriteSnapshot(snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	w.mu.Lock()
	w.lastHash = sha256.Sum256(data)
	w.mu.Unlock()
	return os.WriteFile(w.path, data, 0o644)
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			if absPath != w.path {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("snapshot watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		log.Printf("snapshot watcher: read %s: %v", w.path, err)
		return
	}
	sum := sha256.Sum256(data)
	w.mu.Lock()
	own := sum == w.lastHash
	w.mu.Unlock()
	if own {
		return
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("snapshot watcher: parse %s: %v", w.path, err)
		return
	}
	if w.onChange != nil {
		w.onChange(snap)
	}
}
