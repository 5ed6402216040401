package spatial_test

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/spatial"
)

// ─────────────────────────────────────────────────────────────
// Grid index tests — including brute-force equivalence
// ─────────────────────────────────────────────────────────────

func TestGrid_QueryPoint(t *testing.T) {
	g := spatial.New(0)
	g.Upsert("low", domain.Geometry{X: 0, Y: 0, Width: 100, Height: 100}, 1)
	g.Upsert("high", domain.Geometry{X: 50, Y: 50, Width: 100, Height: 100}, 2)

	hits := g.QueryPoint(75, 75)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits in the overlap, got %d", len(hits))
	}
	if hits[0] != "high" {
		t.Errorf("topmost block must come first, got %v", hits)
	}

	if hits := g.QueryPoint(-10, -10); len(hits) != 0 {
		t.Errorf("expected no hits outside all blocks, got %v", hits)
	}
}

func TestGrid_QueryPointAcrossCells(t *testing.T) {
	g := spatial.New(64)
	// Spans several cells; every covered point must hit.
	g.Upsert("wide", domain.Geometry{X: 10, Y: 10, Width: 500, Height: 30}, 1)

	for _, x := range []float64{10, 100, 300, 510} {
		if hits := g.QueryPoint(x, 20); len(hits) != 1 {
			t.Errorf("point (%.0f, 20): expected hit, got %v", x, hits)
		}
	}
}

func TestGrid_QueryRectDegenerate(t *testing.T) {
	g := spatial.New(0)
	g.Upsert("b", domain.Geometry{X: 0, Y: 0, Width: 100, Height: 100}, 1)

	if hits := g.QueryRect(domain.Geometry{X: 10, Y: 10, Width: 0, Height: 50}); hits != nil {
		t.Errorf("zero-extent rect must match nothing, got %v", hits)
	}
	if hits := g.QueryRect(domain.Geometry{X: 10, Y: 10, Width: -5, Height: 50}); hits != nil {
		t.Errorf("negative-extent rect must match nothing, got %v", hits)
	}
}

func TestGrid_RemoveAndUpsert(t *testing.T) {
	g := spatial.New(0)
	g.Upsert("b", domain.Geometry{X: 0, Y: 0, Width: 50, Height: 50}, 1)

	g.Upsert("b", domain.Geometry{X: 1000, Y: 1000, Width: 50, Height: 50}, 1)
	if hits := g.QueryPoint(25, 25); len(hits) != 0 {
		t.Errorf("stale position still indexed after move: %v", hits)
	}
	if hits := g.QueryPoint(1025, 1025); len(hits) != 1 {
		t.Errorf("new position not indexed: %v", hits)
	}

	g.Remove("b")
	if g.Len() != 0 {
		t.Error("expected empty index after remove")
	}
	g.Remove("b") // unknown id is a no-op
}

// TestGrid_BruteForceEquivalence drives the index with random
// mutations and checks every query against plain rectangle math.
func TestGrid_BruteForceEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := spatial.New(128)
	truth := map[string]domain.Geometry{}

	randGeom := func() domain.Geometry {
		return domain.Geometry{
			X:      rng.Float64()*2000 - 500,
			Y:      rng.Float64()*2000 - 500,
			Width:  rng.Float64()*300 + 1,
			Height: rng.Float64()*300 + 1,
		}
	}

	for i := 0; i < 300; i++ {
		id := fmt.Sprintf("b%d", i%80)
		switch rng.Intn(3) {
		case 0, 1:
			geom := randGeom()
			truth[id] = geom
			g.Upsert(id, geom, int64(i))
		case 2:
			delete(truth, id)
			g.Remove(id)
		}

		// Point query vs brute force.
		px, py := rng.Float64()*2000-500, rng.Float64()*2000-500
		got := g.QueryPoint(px, py)
		var want []string
		for id, geom := range truth {
			if geom.Contains(px, py) {
				want = append(want, id)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("step %d: point query returned %d ids, brute force %d", i, len(got), len(want))
		}

		// Region query vs brute force.
		r := randGeom()
		gotR := g.QueryRect(r)
		var wantR []string
		for id, geom := range truth {
			if geom.Intersects(r) {
				wantR = append(wantR, id)
			}
		}
		sort.Strings(wantR)
		if len(gotR) != len(wantR) {
			t.Fatalf("step %d: region query returned %d ids, brute force %d", i, len(gotR), len(wantR))
		}
		for j := range gotR {
			if gotR[j] != wantR[j] {
				t.Fatalf("step %d: region mismatch at %d: %s vs %s", i, j, gotR[j], wantR[j])
			}
		}
	}
}
