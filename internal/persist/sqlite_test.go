package persist_test

import (
	"path/filepath"
	"testing"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/persist"
	"blocksgraph/internal/service"
)

func openDB(t *testing.T) *persist.DB {
	t.Helper()
	db, err := persist.Open(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_LoadRoundTrip(t *testing.T) {
	db := openDB(t)

	g := service.New(domain.ConnectionPolicy{})
	a, _ := g.AddBlock(domain.Geometry{X: 10, Y: 20, Width: 300, Height: 150}, domain.BlockMeta{Label: "A", Kind: "note"})
	b, _ := g.AddBlock(domain.Geometry{X: 500, Y: 20, Width: 300, Height: 150}, domain.BlockMeta{Label: "B"})
	c, _ := g.Connect(a.ID, b.ID, domain.ConnectionMeta{Label: "edge", Style: domain.ConnectionStyleDashed})

	if err := db.ReplaceAll(g.Snapshot()); err != nil {
		t.Fatal(err)
	}

	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Blocks) != 2 || len(snap.Connections) != 1 {
		t.Fatalf("loaded %d blocks, %d connections", len(snap.Blocks), len(snap.Connections))
	}
	// z order preserved bottom to top
	if snap.Blocks[0].ID != a.ID || snap.Blocks[1].ID != b.ID {
		t.Errorf("z order lost: %s, %s", snap.Blocks[0].ID, snap.Blocks[1].ID)
	}
	if snap.Blocks[0].Geometry != a.Geometry || snap.Blocks[0].Label != "A" || snap.Blocks[0].Kind != "note" {
		t.Errorf("block a not reproduced: %+v", snap.Blocks[0])
	}
	got := snap.Connections[0]
	if got.ID != c.ID || got.SourceID != a.ID || got.TargetID != b.ID || got.Style != domain.ConnectionStyleDashed {
		t.Errorf("connection not reproduced: %+v", got)
	}

	// The snapshot restores into a fresh engine.
	fresh := service.New(domain.ConnectionPolicy{})
	if err := fresh.Restore(snap); err != nil {
		t.Fatalf("restore from db: %v", err)
	}
}

func TestMirror_AppliesChanges(t *testing.T) {
	db := openDB(t)
	g := service.New(domain.ConnectionPolicy{})
	m := persist.NewMirror(db, g)
	if err := m.Start(""); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	a, _ := g.AddBlock(domain.Geometry{X: 0, Y: 0, Width: 100, Height: 100}, domain.BlockMeta{})
	b, _ := g.AddBlock(domain.Geometry{X: 300, Y: 0, Width: 100, Height: 100}, domain.BlockMeta{})
	g.Connect(a.ID, b.ID, domain.ConnectionMeta{})
	g.MoveBlock(a.ID, domain.Geometry{X: 50, Y: 60, Width: 100, Height: 100})

	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Blocks) != 2 || len(snap.Connections) != 1 {
		t.Fatalf("mirror rows: %d blocks, %d connections", len(snap.Blocks), len(snap.Connections))
	}
	for _, blk := range snap.Blocks {
		if blk.ID == a.ID && (blk.Geometry.X != 50 || blk.Geometry.Y != 60) {
			t.Errorf("move not mirrored: %+v", blk.Geometry)
		}
	}
}

func TestMirror_CascadeLeavesNoDanglingRows(t *testing.T) {
	db := openDB(t)
	g := service.New(domain.ConnectionPolicy{})
	m := persist.NewMirror(db, g)
	if err := m.Start(""); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	a, _ := g.AddBlock(domain.Geometry{Width: 100, Height: 100}, domain.BlockMeta{})
	b, _ := g.AddBlock(domain.Geometry{X: 300, Width: 100, Height: 100}, domain.BlockMeta{})
	g.Connect(a.ID, b.ID, domain.ConnectionMeta{})

	if err := g.RemoveBlock(a.ID); err != nil {
		t.Fatal(err)
	}

	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Blocks) != 1 || snap.Blocks[0].ID != b.ID {
		t.Errorf("blocks after cascade: %+v", snap.Blocks)
	}
	if len(snap.Connections) != 0 {
		t.Errorf("dangling connection rows: %+v", snap.Connections)
	}
}

func TestMirror_Checkpoint(t *testing.T) {
	db := openDB(t)
	g := service.New(domain.ConnectionPolicy{})
	m := persist.NewMirror(db, g)

	// Not subscribed yet: rows only appear through the checkpoint.
	g.AddBlock(domain.Geometry{Width: 100, Height: 100}, domain.BlockMeta{})
	if err := m.Checkpoint(); err != nil {
		t.Fatal(err)
	}
	snap, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Blocks) != 1 {
		t.Errorf("checkpoint wrote %d blocks", len(snap.Blocks))
	}
}
