package storage_test

import (
	"testing"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// BlockStore unit tests
// ─────────────────────────────────────────────────────────────

func TestBlockStore_AddAndGet(t *testing.T) {
	s := storage.NewBlockStore()
	g := domain.Geometry{X: 10, Y: 20, Width: 100, Height: 50}

	b, err := s.Add(g, domain.BlockMeta{Label: "api", Kind: "service"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected a fresh id")
	}

	got, ok := s.Get(b.ID)
	if !ok {
		t.Fatal("expected block to exist")
	}
	if got.Geometry != g {
		t.Errorf("geometry changed on the way in: got %+v, want %+v", got.Geometry, g)
	}
	if got.Label != "api" || got.Kind != "service" {
		t.Errorf("metadata not preserved: %+v", got)
	}
}

func TestBlockStore_AddRejectsInvalidGeometry(t *testing.T) {
	s := storage.NewBlockStore()

	_, err := s.Add(domain.Geometry{X: 0, Y: 0, Width: 0, Height: 50}, domain.BlockMeta{})
	if err == nil {
		t.Fatal("expected validation error for zero width")
	}
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation code, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("store size changed on rejected add: %d", s.Len())
	}
}

func TestBlockStore_FreshIDs(t *testing.T) {
	s := storage.NewBlockStore()
	g := domain.Geometry{Width: 10, Height: 10}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		b, err := s.Add(g, domain.BlockMeta{})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if seen[b.ID] {
			t.Fatalf("id %s reused", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestBlockStore_ListOrderedByZ(t *testing.T) {
	s := storage.NewBlockStore()
	g := domain.Geometry{Width: 10, Height: 10}

	a, _ := s.Add(g, domain.BlockMeta{Label: "a"})
	b, _ := s.Add(g, domain.BlockMeta{Label: "b"})
	c, _ := s.Add(g, domain.BlockMeta{Label: "c"})

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(list))
	}
	if list[0].ID != a.ID || list[1].ID != b.ID || list[2].ID != c.ID {
		t.Error("expected creation order bottom to top")
	}

	// Raising a block puts it on top.
	if _, err := s.Raise(a.ID); err != nil {
		t.Fatalf("raise: %v", err)
	}
	list = s.List()
	if list[2].ID != a.ID {
		t.Errorf("expected %s on top after raise, got %s", a.ID, list[2].ID)
	}
	_ = c
}

func TestBlockStore_SetGeometry(t *testing.T) {
	s := storage.NewBlockStore()
	b, _ := s.Add(domain.Geometry{Width: 10, Height: 10}, domain.BlockMeta{})

	moved := domain.Geometry{X: 300, Y: 400, Width: 20, Height: 30}
	if _, err := s.SetGeometry(b.ID, moved); err != nil {
		t.Fatalf("set geometry: %v", err)
	}
	got, _ := s.Get(b.ID)
	if got.Geometry != moved {
		t.Errorf("got %+v, want %+v", got.Geometry, moved)
	}

	// Invalid geometry leaves the block untouched.
	if _, err := s.SetGeometry(b.ID, domain.Geometry{Width: -1, Height: 10}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ = s.Get(b.ID)
	if got.Geometry != moved {
		t.Error("failed move must not change stored geometry")
	}

	if _, err := s.SetGeometry("missing", moved); !domain.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestBlockStore_Remove(t *testing.T) {
	s := storage.NewBlockStore()
	b, _ := s.Add(domain.Geometry{Width: 10, Height: 10}, domain.BlockMeta{})

	if err := s.Remove(b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Contains(b.ID) {
		t.Error("block still present after remove")
	}
	if err := s.Remove(b.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not-found on double remove, got %v", err)
	}
}

func TestBlockStore_RestorePreservesZCounter(t *testing.T) {
	s := storage.NewBlockStore()
	s.Restore([]domain.Block{
		{ID: "b1", Geometry: domain.Geometry{Width: 10, Height: 10}, Z: 7},
	})

	b, err := s.Add(domain.Geometry{Width: 10, Height: 10}, domain.BlockMeta{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.Z <= 7 {
		t.Errorf("new block z %d should be above restored max 7", b.Z)
	}
}
