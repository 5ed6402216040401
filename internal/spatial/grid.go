// Package spatial provides a uniform-grid index over block bounding
// boxes for interactive hit-testing and marquee queries. Blocks are
// bucketed into fixed-size cells, so point and region queries touch
// only the cells they overlap instead of the whole block set.
package spatial

import (
	"math"
	"sort"

	"blocksgraph/internal/domain"
)

// DefaultCellSize is sized so a typical canvas block spans one to four
// cells.
const DefaultCellSize = 256.0

type cellKey struct{ cx, cy int }

type entry struct {
	geom domain.Geometry
	z    int64
}

// Grid is the spatial index. It is a derived structure: the engine
// updates it in the same commit as every geometry-affecting mutation,
// so queries never observe a state older than the latest commit.
type Grid struct {
	cell    float64
	entries map[string]entry
	cells   map[cellKey]map[string]struct{}
}

// New creates a grid with the given cell size; sizes <= 0 fall back to
// DefaultCellSize.
func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cell:    cellSize,
		entries: make(map[string]entry),
		cells:   make(map[cellKey]map[string]struct{}),
	}
}

// Upsert inserts or repositions a block's bounding box.
func (g *Grid) Upsert(id string, geom domain.Geometry, z int64) {
	if old, ok := g.entries[id]; ok {
		g.removeFromCells(id, old.geom)
	}
	g.entries[id] = entry{geom: geom, z: z}
	g.eachCell(geom, func(k cellKey) {
		bucket, ok := g.cells[k]
		if !ok {
			bucket = make(map[string]struct{})
			g.cells[k] = bucket
		}
		bucket[id] = struct{}{}
	})
}

// Remove drops a block from the index. Unknown ids are a no-op.
func (g *Grid) Remove(id string) {
	e, ok := g.entries[id]
	if !ok {
		return
	}
	g.removeFromCells(id, e.geom)
	delete(g.entries, id)
}

// Len returns the number of indexed blocks.
func (g *Grid) Len() int {
	return len(g.entries)
}

// Reset discards everything.
func (g *Grid) Reset() {
	g.entries = make(map[string]entry)
	g.cells = make(map[cellKey]map[string]struct{})
}

// QueryPoint returns the ids of all blocks containing the point,
// topmost first. Click hit-testing takes the first match.
func (g *Grid) QueryPoint(x, y float64) []string {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return nil
	}
	k := cellKey{g.coord(x), g.coord(y)}
	var hits []string
	for id := range g.cells[k] {
		if g.entries[id].geom.Contains(x, y) {
			hits = append(hits, id)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		return g.entries[hits[i]].z > g.entries[hits[j]].z
	})
	return hits
}

// QueryRect returns the ids of all blocks intersecting the rectangle,
// unordered. Rectangles with zero or negative extent match nothing.
func (g *Grid) QueryRect(r domain.Geometry) []string {
	if r.Empty() {
		return nil
	}
	seen := make(map[string]struct{})
	var hits []string
	g.eachCell(r, func(k cellKey) {
		for id := range g.cells[k] {
			if _, dup := seen[id]; dup {
				continue
			}
			if g.entries[id].geom.Intersects(r) {
				seen[id] = struct{}{}
				hits = append(hits, id)
			}
		}
	})
	sort.Strings(hits)
	return hits
}

// Geometries returns the bounding boxes of every indexed block except
// the excluded ids. Connection routing uses these as obstacles.
func (g *Grid) Geometries(exclude map[string]bool) []domain.Geometry {
	out := make([]domain.Geometry, 0, len(g.entries))
	for id, e := range g.entries {
		if exclude[id] {
			continue
		}
		out = append(out, e.geom)
	}
	return out
}

func (g *Grid) coord(v float64) int {
	return int(math.Floor(v / g.cell))
}

func (g *Grid) eachCell(geom domain.Geometry, fn func(cellKey)) {
	x0 := g.coord(geom.X)
	y0 := g.coord(geom.Y)
	x1 := g.coord(geom.X + geom.Width)
	y1 := g.coord(geom.Y + geom.Height)
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			fn(cellKey{cx, cy})
		}
	}
}

func (g *Grid) removeFromCells(id string, geom domain.Geometry) {
	g.eachCell(geom, func(k cellKey) {
		if bucket, ok := g.cells[k]; ok {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(g.cells, k)
			}
		}
	})
}
