package layout

import (
	"container/heap"
	"math"
	"sort"

	"blocksgraph/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Orthogonal connection routing with obstacle avoidance
// ─────────────────────────────────────────────────────────────

// routeMargin is how far a path keeps clear of block edges.
const routeMargin = 30.0

type point struct{ x, y float64 }

// Route computes an obstacle-aware orthogonal polyline from the source
// block to the target block, in world coordinates. Anchors pick the
// departure/arrival side; AnchorAuto faces the other block. Obstacles
// are the bounding boxes the path must not cross (the endpoint blocks
// are handled separately and must not be included).
func Route(source, target domain.Block, srcAnchor, dstAnchor domain.Anchor, obstacles []domain.Geometry) [][]float64 {
	srcSide := resolveAnchor(srcAnchor, source.Geometry, target.Geometry)
	dstSide := resolveAnchor(dstAnchor, target.Geometry, source.Geometry)

	origin := anchorPoint(source.Geometry, srcSide)
	dest := anchorPoint(target.Geometry, dstSide)

	sdx, sdy := sideDir(srcSide)
	ddx, ddy := sideDir(dstSide)
	antennaA := point{origin.x + sdx*routeMargin, origin.y + sdy*routeMargin}
	antennaB := point{dest.x + ddx*routeMargin, dest.y + ddy*routeMargin}

	endpoints := []domain.Geometry{source.Geometry, target.Geometry}
	blockers := append(append([]domain.Geometry{}, endpoints...), obstacles...)

	spots := routingSpots(origin, dest, antennaA, antennaB, blockers, endpoints)
	path := shortestOrthoPath(spots, antennaA, antennaB, blockers)
	if path == nil {
		return fallbackRoute(origin, dest, srcSide, dstSide)
	}

	full := append([]point{origin}, append(path, dest)...)
	return toPolyline(simplify(full))
}

// resolveAnchor turns AnchorAuto into the side of `from` that faces
// `toward`, along the dominant axis between the centers.
func resolveAnchor(a domain.Anchor, from, toward domain.Geometry) domain.Anchor {
	if a != domain.AnchorAuto {
		return a
	}
	dx := (toward.X + toward.Width/2) - (from.X + from.Width/2)
	dy := (toward.Y + toward.Height/2) - (from.Y + from.Height/2)
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return domain.AnchorRight
		}
		return domain.AnchorLeft
	}
	if dy >= 0 {
		return domain.AnchorBottom
	}
	return domain.AnchorTop
}

func anchorPoint(g domain.Geometry, side domain.Anchor) point {
	switch side {
	case domain.AnchorTop:
		return point{g.X + g.Width/2, g.Y}
	case domain.AnchorBottom:
		return point{g.X + g.Width/2, g.Y + g.Height}
	case domain.AnchorLeft:
		return point{g.X, g.Y + g.Height/2}
	default:
		return point{g.X + g.Width, g.Y + g.Height/2}
	}
}

func sideDir(side domain.Anchor) (float64, float64) {
	switch side {
	case domain.AnchorTop:
		return 0, -1
	case domain.AnchorBottom:
		return 0, 1
	case domain.AnchorLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// routingSpots builds the sparse waypoint set: ruler lines along the
// inflated obstacle edges and antenna coordinates, their intersections
// and cell midpoints, minus any spot inside an endpoint block. The
// antenna points always survive filtering.
func routingSpots(origin, dest, antennaA, antennaB point, blockers, endpoints []domain.Geometry) []point {
	var xs, ys []float64
	for _, b := range blockers {
		xs = append(xs, b.X-routeMargin, b.X+b.Width+routeMargin)
		ys = append(ys, b.Y-routeMargin, b.Y+b.Height+routeMargin)
	}
	xs = append(xs, origin.x, dest.x, antennaA.x, antennaB.x)
	ys = append(ys, origin.y, dest.y, antennaA.y, antennaB.y)
	xs = uniqSorted(xs)
	ys = uniqSorted(ys)

	var raw []point
	for _, x := range xs {
		for _, y := range ys {
			raw = append(raw, point{x, y})
		}
	}
	for i := 0; i < len(xs)-1; i++ {
		mx := (xs[i] + xs[i+1]) / 2
		for _, y := range ys {
			raw = append(raw, point{mx, y})
		}
		for j := 0; j < len(ys)-1; j++ {
			raw = append(raw, point{mx, (ys[j] + ys[j+1]) / 2})
		}
	}
	for j := 0; j < len(ys)-1; j++ {
		my := (ys[j] + ys[j+1]) / 2
		for _, x := range xs {
			raw = append(raw, point{x, my})
		}
	}
	raw = append(raw, antennaA, antennaB)

	keyA, keyB := ptKey(antennaA), ptKey(antennaB)
	seen := map[int64]bool{}
	var spots []point
	for _, p := range raw {
		k := ptKey(p)
		if seen[k] {
			continue
		}
		if k != keyA && k != keyB && insideAny(p, endpoints) {
			continue
		}
		seen[k] = true
		spots = append(spots, p)
	}
	return spots
}

func insideAny(p point, rects []domain.Geometry) bool {
	for _, r := range rects {
		if p.x >= r.X-1 && p.x <= r.X+r.Width+1 &&
			p.y >= r.Y-1 && p.y <= r.Y+r.Height+1 {
			return true
		}
	}
	return false
}

// segmentCrosses reports whether an axis-aligned segment passes
// through the rectangle's interior.
func segmentCrosses(a, b point, r domain.Geometry) bool {
	if math.Abs(a.y-b.y) < 0.5 {
		y := a.y
		if y <= r.Y || y >= r.Y+r.Height {
			return false
		}
		return math.Min(a.x, b.x) < r.X+r.Width && math.Max(a.x, b.x) > r.X
	}
	if math.Abs(a.x-b.x) < 0.5 {
		x := a.x
		if x <= r.X || x >= r.X+r.Width {
			return false
		}
		return math.Min(a.y, b.y) < r.Y+r.Height && math.Max(a.y, b.y) > r.Y
	}
	return false
}

// ── Dijkstra with bend penalty ─────────────────────────────

type routeNode struct {
	pt   point
	dist float64
	prev *routeNode
	dir  byte // 'h', 'v', or 0 at the origin
	idx  int  // heap index, -1 when popped
}

type routeHeap []*routeNode

func (h routeHeap) Len() int            { return len(h) }
func (h routeHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h routeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx = i; h[j].idx = j }
func (h *routeHeap) Push(x any) { n := x.(*routeNode); n.idx = len(*h); *h = append(*h, n) }
func (h *routeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	n.idx = -1
	*h = old[:len(old)-1]
	return n
}

type routeEdge struct {
	to     int64
	weight float64
	dir    byte
}

func ptKey(p point) int64 {
	return int64(math.Round(p.x*100))*10000000 + int64(math.Round(p.y*100))
}

// shortestOrthoPath runs Dijkstra over the spot graph. Adjacent spots
// that share a row or column connect unless a blocker sits between
// them; turning costs a quadratic bend penalty so the route prefers
// long straight runs. Returns nil when no path exists.
func shortestOrthoPath(spots []point, origin, dest point, blockers []domain.Geometry) []point {
	byX := map[int64][]point{}
	byY := map[int64][]point{}
	for _, s := range spots {
		byX[int64(math.Round(s.x*100))] = append(byX[int64(math.Round(s.x*100))], s)
		byY[int64(math.Round(s.y*100))] = append(byY[int64(math.Round(s.y*100))], s)
	}
	for _, col := range byX {
		sort.Slice(col, func(i, j int) bool { return col[i].y < col[j].y })
	}
	for _, row := range byY {
		sort.Slice(row, func(i, j int) bool { return row[i].x < row[j].x })
	}

	blocked := func(a, b point) bool {
		for _, r := range blockers {
			if segmentCrosses(a, b, r) {
				return true
			}
		}
		return false
	}

	adj := map[int64][]routeEdge{}
	link := func(a, b point, w float64, dir byte) {
		adj[ptKey(a)] = append(adj[ptKey(a)], routeEdge{ptKey(b), w, dir})
		adj[ptKey(b)] = append(adj[ptKey(b)], routeEdge{ptKey(a), w, dir})
	}
	for _, col := range byX {
		for i := 0; i < len(col)-1; i++ {
			if !blocked(col[i], col[i+1]) {
				link(col[i], col[i+1], col[i+1].y-col[i].y, 'v')
			}
		}
	}
	for _, row := range byY {
		for i := 0; i < len(row)-1; i++ {
			if !blocked(row[i], row[i+1]) {
				link(row[i], row[i+1], row[i+1].x-row[i].x, 'h')
			}
		}
	}

	nodes := map[int64]*routeNode{}
	for _, s := range spots {
		nodes[ptKey(s)] = &routeNode{pt: s, dist: math.Inf(1), idx: -1}
	}
	start, goal := nodes[ptKey(origin)], nodes[ptKey(dest)]
	if start == nil || goal == nil {
		return nil
	}

	start.dist = 0
	h := &routeHeap{}
	heap.Push(h, start)
	visited := map[int64]bool{}

	for h.Len() > 0 {
		cur := heap.Pop(h).(*routeNode)
		ck := ptKey(cur.pt)
		if visited[ck] {
			continue
		}
		visited[ck] = true
		if ck == ptKey(goal.pt) {
			break
		}
		for _, e := range adj[ck] {
			next := nodes[e.to]
			if next == nil || visited[e.to] {
				continue
			}
			bend := 0.0
			if cur.dir != 0 && cur.dir != e.dir {
				bend = (e.weight + 1) * (e.weight + 1)
			}
			if d := cur.dist + e.weight + bend; d < next.dist {
				next.dist = d
				next.prev = cur
				next.dir = e.dir
				if next.idx >= 0 {
					heap.Fix(h, next.idx)
				} else {
					heap.Push(h, next)
				}
			}
		}
	}

	if math.IsInf(goal.dist, 1) {
		return nil
	}
	var path []point
	for n := goal; n != nil; n = n.prev {
		path = append(path, n.pt)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// fallbackRoute is the obstacle-blind L/Z route used when the graph
// search cannot reach the destination.
func fallbackRoute(origin, dest point, srcSide, dstSide domain.Anchor) [][]float64 {
	sdx, sdy := sideDir(srcSide)
	ddx, ddy := sideDir(dstSide)
	a := point{origin.x + sdx*routeMargin, origin.y + sdy*routeMargin}
	b := point{dest.x + ddx*routeMargin, dest.y + ddy*routeMargin}

	vertSrc := srcSide == domain.AnchorTop || srcSide == domain.AnchorBottom
	vertDst := dstSide == domain.AnchorTop || dstSide == domain.AnchorBottom

	var pts []point
	switch {
	case vertSrc && vertDst:
		midY := (a.y + b.y) / 2
		pts = []point{origin, {origin.x, midY}, {dest.x, midY}, dest}
	case !vertSrc && !vertDst:
		midX := (a.x + b.x) / 2
		pts = []point{origin, {midX, origin.y}, {midX, dest.y}, dest}
	case vertSrc:
		pts = []point{origin, {origin.x, dest.y}, dest}
	default:
		pts = []point{origin, {dest.x, origin.y}, dest}
	}
	return toPolyline(simplify(pts))
}

// simplify drops collinear and duplicate waypoints.
func simplify(pts []point) []point {
	if len(pts) < 3 {
		return pts
	}
	out := []point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := out[len(out)-1], pts[i], pts[i+1]
		sameX := math.Abs(prev.x-cur.x) < 0.5 && math.Abs(cur.x-next.x) < 0.5
		sameY := math.Abs(prev.y-cur.y) < 0.5 && math.Abs(cur.y-next.y) < 0.5
		dup := math.Abs(prev.x-cur.x) < 0.5 && math.Abs(prev.y-cur.y) < 0.5
		if !sameX && !sameY && !dup {
			out = append(out, cur)
		}
	}
	last := pts[len(pts)-1]
	tail := out[len(out)-1]
	if math.Abs(tail.x-last.x) >= 0.5 || math.Abs(tail.y-last.y) >= 0.5 {
		out = append(out, last)
	}
	return out
}

func toPolyline(pts []point) [][]float64 {
	out := make([][]float64, 0, len(pts))
	for _, p := range pts {
		out = append(out, []float64{p.x, p.y})
	}
	return out
}

func uniqSorted(vals []float64) []float64 {
	seen := map[int64]bool{}
	var out []float64
	for _, v := range vals {
		k := int64(math.Round(v * 100))
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
