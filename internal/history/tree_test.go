package history_test

import (
	"fmt"
	"testing"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/history"
)

func snap(label string) domain.Snapshot {
	return domain.Snapshot{Blocks: []domain.Block{{
		ID:       label,
		Geometry: domain.Geometry{Width: 10, Height: 10},
	}}}
}

func TestStore_PushAndUndo(t *testing.T) {
	s := history.NewStore()
	s.Push("initial", snap("v0"))
	s.Push("move", snap("v1"))
	s.Push("resize", snap("v2"))

	got, ok := s.Undo()
	if !ok || got.Blocks[0].ID != "v1" {
		t.Fatalf("first undo: %v %v", got, ok)
	}
	got, ok = s.Undo()
	if !ok || got.Blocks[0].ID != "v0" {
		t.Fatalf("second undo: %v %v", got, ok)
	}
	if _, ok := s.Undo(); ok {
		t.Error("undo past the root must fail")
	}
}

func TestStore_Redo(t *testing.T) {
	s := history.NewStore()
	s.Push("initial", snap("v0"))
	s.Push("move", snap("v1"))
	s.Undo()

	got, ok := s.Redo()
	if !ok || got.Blocks[0].ID != "v1" {
		t.Fatalf("redo: %v %v", got, ok)
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo at a leaf must fail")
	}
}

func TestStore_BranchingKeepsRedoPath(t *testing.T) {
	s := history.NewStore()
	s.Push("initial", snap("v0"))
	s.Push("move", snap("v1"))
	s.Undo()
	branch := s.Push("branch", snap("v2"))

	// The old path still exists in the tree.
	tree := s.Tree()
	if len(tree.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(tree.Nodes))
	}
	if tree.CurrentID != branch.ID {
		t.Errorf("current = %s, want %s", tree.CurrentID, branch.ID)
	}

	// Redo from v0 now prefers the newest branch.
	s.Undo()
	got, ok := s.Redo()
	if !ok || got.Blocks[0].ID != "v2" {
		t.Errorf("redo after branch: %v %v", got, ok)
	}
}

func TestStore_GoTo(t *testing.T) {
	s := history.NewStore()
	root := s.Push("initial", snap("v0"))
	s.Push("move", snap("v1"))

	got, err := s.GoTo(root.ID)
	if err != nil || got.Blocks[0].ID != "v0" {
		t.Fatalf("goto: %v %v", got, err)
	}
	if _, err := s.GoTo("nope"); !domain.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestStore_PruneReparents(t *testing.T) {
	s := history.NewStore()
	for i := 0; i < 45; i++ {
		s.Push(fmt.Sprintf("step %d", i), snap(fmt.Sprintf("v%d", i)))
	}
	if s.Len() != 40 {
		t.Fatalf("expected 40 nodes after pruning, got %d", s.Len())
	}

	tree := s.Tree()
	ids := map[string]bool{}
	for _, n := range tree.Nodes {
		ids[n.ID] = true
	}
	// Every surviving parent pointer resolves inside the tree.
	roots := 0
	for _, n := range tree.Nodes {
		if n.ParentID == "" {
			roots++
		} else if !ids[n.ParentID] {
			t.Errorf("node %s has dangling parent %s", n.ID, n.ParentID)
		}
	}
	if roots != 1 {
		t.Errorf("expected one root after reparenting, got %d", roots)
	}

	// The full chain back from current still walks to the root.
	cur, _ := s.Current()
	steps := 0
	for cur.ParentID != "" {
		next, ok := s.Tree().Nodes[0], false
		for _, n := range tree.Nodes {
			if n.ID == cur.ParentID {
				next, ok = n, true
				break
			}
		}
		if !ok {
			t.Fatal("broken parent chain")
		}
		cur = next
		steps++
	}
	if steps != 39 {
		t.Errorf("chain length = %d, want 39", steps)
	}
}
