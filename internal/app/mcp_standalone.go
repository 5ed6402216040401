package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"blocksgraph/internal/config"
	"blocksgraph/internal/domain"
	"blocksgraph/internal/layout"
	mcpserver "blocksgraph/internal/mcp"
	"blocksgraph/internal/persist"
	"blocksgraph/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout
// with no GUI. The graph is loaded from and mirrored to the same
// SQLite database the desktop app uses.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	graph := service.New(domain.ConnectionPolicy{
		AllowSelfLoop:      cfg.Graph.AllowSelfLoop,
		AllowParallelEdges: cfg.Graph.AllowParallelEdges,
	})

	dbPath := cfg.Persist.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir(), "graph.db")
	}
	db, err := persist.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if snap, err := db.Load(); err == nil && len(snap.Blocks) > 0 {
		if err := graph.Restore(snap); err != nil {
			log.Printf("Failed to restore last session: %v", err)
		}
	}

	mirror := persist.NewMirror(db, graph)
	if err := mirror.Start(cfg.Persist.CheckpointCron); err != nil {
		log.Printf("Failed to start mirror: %v", err)
	}
	defer mirror.Stop()

	srv := mcpserver.New(mcpserver.Deps{
		Graph:  graph,
		Layout: layout.NewEngine(cfg.Snap.GridSize),
	})

	go func() {
		<-ctx.Done()
		if err := mirror.Checkpoint(); err != nil {
			log.Printf("Final checkpoint failed: %v", err)
		}
		os.Exit(0)
	}()

	log.Println("[MCP] Starting standalone stdio server...")
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
