package app

import (
	"context"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocksgraph/internal/config"
	"blocksgraph/internal/domain"
	"blocksgraph/internal/history"
	"blocksgraph/internal/interaction"
	"blocksgraph/internal/layout"
	"blocksgraph/internal/persist"
	"blocksgraph/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	cfg *config.Config

	graph      *service.Graph
	controller *interaction.Controller
	layout     *layout.Engine
	history    *history.Store

	db      *persist.DB
	mirror  *persist.Mirror
	watcher *persist.Watcher
	unsub   func()

	// Set by the change subscriber when a delivery touches blocks or
	// connections; PointerUp reads it to decide whether the gesture
	// deserves a history node.
	structuralChange bool
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.cfg = config.Load()

	a.graph = service.New(domain.ConnectionPolicy{
		AllowSelfLoop:      a.cfg.Graph.AllowSelfLoop,
		AllowParallelEdges: a.cfg.Graph.AllowParallelEdges,
	})
	a.controller = interaction.NewController(a.graph, interaction.SnapConfig{
		Enabled:  a.cfg.Snap.Enabled,
		GridSize: a.cfg.Snap.GridSize,
	})
	a.layout = layout.NewEngine(a.cfg.Snap.GridSize)
	a.history = history.NewStore()

	dbPath := a.cfg.Persist.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir(), "graph.db")
	}
	db, err := persist.Open(dbPath)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db

	// Bring back the previous session before anyone subscribes, so the
	// initial load doesn't echo into the mirror or the frontend.
	if snap, err := db.Load(); err == nil && len(snap.Blocks) > 0 {
		if err := a.graph.Restore(snap); err != nil {
			wailsRuntime.LogErrorf(ctx, "Failed to restore last session: %v", err)
		}
	}
	a.history.Push("initial", a.graph.Snapshot())

	a.mirror = persist.NewMirror(db, a.graph)
	if err := a.mirror.Start(a.cfg.Persist.CheckpointCron); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to start mirror: %v", err)
	}

	if path := a.cfg.Persist.SnapshotPath; path != "" {
		w, err := persist.NewWatcher(path, a.onExternalSnapshot)
		if err != nil {
			wailsRuntime.LogErrorf(ctx, "Failed to watch snapshot file: %v", err)
		} else {
			a.watcher = w
		}
	}

	// Bridge engine events to the renderer.
	a.unsub = a.graph.Subscribe(func(cs domain.ChangeSet) {
		if cs.Structural() {
			a.structuralChange = true
		}
		wailsRuntime.EventsEmit(ctx, "graph:changed", cs)
	})
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.unsub != nil {
		a.unsub()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.mirror != nil {
		// Final checkpoint so the last row-wise state is collapsed.
		if err := a.mirror.Checkpoint(); err != nil {
			wailsRuntime.LogErrorf(ctx, "Final checkpoint failed: %v", err)
		}
		a.mirror.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) onExternalSnapshot(snap domain.Snapshot) {
	if err := a.graph.Restore(snap); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "External snapshot rejected: %v", err)
		return
	}
	a.history.Push("external import", a.graph.Snapshot())
}
