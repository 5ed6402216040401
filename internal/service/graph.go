package service

import (
	"sort"
	"sync"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/spatial"
	"blocksgraph/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Graph — the block-graph engine
// ─────────────────────────────────────────────────────────────

// Graph composes the block store, connection store, spatial index, and
// selection behind one mutation boundary. Every successful mutating
// call commits fully, updates the index, and emits exactly one
// ChangeSet; every failing call leaves the previous state intact.
//
// One mutex serializes access: Wails bindings, the MCP server, cron
// checkpoints, and the snapshot watcher all enter from their own
// goroutines. Events are dispatched after the lock is released, so
// subscribers may call back into the engine.
type Graph struct {
	mu        sync.Mutex
	blocks    *storage.BlockStore
	conns     *storage.ConnectionStore
	index     *spatial.Grid
	notifier  *Notifier
	selection map[string]struct{}
}

// New creates an empty graph with the given connection policy.
func New(policy domain.ConnectionPolicy) *Graph {
	g := &Graph{
		blocks:    storage.NewBlockStore(),
		index:     spatial.New(0),
		notifier:  NewNotifier(),
		selection: make(map[string]struct{}),
	}
	g.conns = storage.NewConnectionStore(policy, g.blocks.Contains)
	return g
}

// Subscribe registers a change handler; see Notifier.Subscribe.
func (g *Graph) Subscribe(fn Handler) func() {
	return g.notifier.Subscribe(fn)
}

// Policy returns the active connection policy.
func (g *Graph) Policy() domain.ConnectionPolicy {
	return g.conns.Policy()
}

// ── Blocks ─────────────────────────────────────────────────

// AddBlock validates the geometry, inserts a new block on top of the
// z-order, and emits its addition.
func (g *Graph) AddBlock(geom domain.Geometry, meta domain.BlockMeta) (domain.Block, error) {
	g.mu.Lock()
	b, err := g.blocks.Add(geom, meta)
	if err != nil {
		g.mu.Unlock()
		return domain.Block{}, err
	}
	g.index.Upsert(b.ID, b.Geometry, b.Z)
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{AddedBlocks: []string{b.ID}})
	return b, nil
}

// RemoveBlock deletes a block, cascading removal of every connection
// referencing it and dropping it from the selection, all in one commit.
func (g *Graph) RemoveBlock(id string) error {
	g.mu.Lock()
	if err := g.blocks.Remove(id); err != nil {
		g.mu.Unlock()
		return err
	}
	removedConns := g.conns.RemoveByBlock(id)
	g.index.Remove(id)
	cs := domain.ChangeSet{
		RemovedBlocks:      []string{id},
		RemovedConnections: removedConns,
	}
	if _, sel := g.selection[id]; sel {
		delete(g.selection, id)
		cs.Deselected = []string{id}
	}
	g.mu.Unlock()

	g.notifier.Emit(cs)
	return nil
}

// MoveBlock atomically replaces a block's geometry (position and size).
func (g *Graph) MoveBlock(id string, geom domain.Geometry) error {
	g.mu.Lock()
	b, err := g.blocks.SetGeometry(id, geom)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.index.Upsert(b.ID, b.Geometry, b.Z)
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{ModifiedBlocks: []string{id}})
	return nil
}

// MoveBlocks applies a batch of geometry replacements atomically:
// either every move commits and one ChangeSet fires, or nothing
// changes. Group drags commit through here on release.
func (g *Graph) MoveBlocks(moves map[string]domain.Geometry) error {
	if len(moves) == 0 {
		return nil
	}
	g.mu.Lock()
	// Validate everything before touching the store.
	for id, geom := range moves {
		if err := geom.Validate(); err != nil {
			g.mu.Unlock()
			return err
		}
		if !g.blocks.Contains(id) {
			g.mu.Unlock()
			return domain.NewError(domain.ErrCodeBlockNotFound, "block %s", id)
		}
	}
	ids := make([]string, 0, len(moves))
	for id, geom := range moves {
		b, _ := g.blocks.SetGeometry(id, geom)
		g.index.Upsert(b.ID, b.Geometry, b.Z)
		ids = append(ids, id)
	}
	sort.Strings(ids)
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{ModifiedBlocks: ids})
	return nil
}

// RaiseBlock moves a block to the top of the z-order.
func (g *Graph) RaiseBlock(id string) error {
	g.mu.Lock()
	b, err := g.blocks.Raise(id)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.index.Upsert(b.ID, b.Geometry, b.Z)
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{ModifiedBlocks: []string{id}})
	return nil
}

// SetBlockMeta replaces a block's label and kind tag.
func (g *Graph) SetBlockMeta(id string, meta domain.BlockMeta) error {
	g.mu.Lock()
	if _, err := g.blocks.SetMeta(id, meta); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{ModifiedBlocks: []string{id}})
	return nil
}

// GetBlock returns a block by id.
func (g *Graph) GetBlock(id string) (domain.Block, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocks.Get(id)
}

// ListBlocks returns all blocks ordered by z, bottom to top.
func (g *Graph) ListBlocks() []domain.Block {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocks.List()
}

// ── Connections ────────────────────────────────────────────

// Connect creates a connection between two existing blocks, subject to
// the configured policy.
func (g *Graph) Connect(sourceID, targetID string, meta domain.ConnectionMeta) (domain.Connection, error) {
	g.mu.Lock()
	c, err := g.conns.Add(sourceID, targetID, meta)
	if err != nil {
		g.mu.Unlock()
		return domain.Connection{}, err
	}
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{AddedConnections: []string{c.ID}})
	return c, nil
}

// Disconnect removes a connection.
func (g *Graph) Disconnect(id string) error {
	g.mu.Lock()
	if err := g.conns.Remove(id); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	g.notifier.Emit(domain.ChangeSet{RemovedConnections: []string{id}})
	return nil
}

// GetConnection returns a connection by id.
func (g *Graph) GetConnection(id string) (domain.Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns.Get(id)
}

// ListConnections returns all connections in creation order.
func (g *Graph) ListConnections() []domain.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns.List()
}

// ConnectionsFor returns every connection touching the block.
func (g *Graph) ConnectionsFor(blockID string) []domain.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns.For(blockID)
}

// ── Spatial queries ────────────────────────────────────────

// QueryPoint returns the ids of blocks under the point, topmost first.
func (g *Graph) QueryPoint(x, y float64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index.QueryPoint(x, y)
}

// QueryRect returns the ids of blocks intersecting the rectangle.
// Degenerate rectangles return an empty result, not an error.
func (g *Graph) QueryRect(r domain.Geometry) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index.QueryRect(r)
}

// Obstacles returns the bounding boxes of all blocks except the
// excluded ids; connection routing feeds on this.
func (g *Graph) Obstacles(exclude ...string) []domain.Geometry {
	ex := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		ex[id] = true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index.Geometries(ex)
}

// ── Selection ──────────────────────────────────────────────

// SetSelection replaces the selection set. Unknown ids are dropped.
// Emits only the delta; no event fires when nothing changes.
func (g *Graph) SetSelection(ids []string) {
	g.mu.Lock()
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if g.blocks.Contains(id) {
			next[id] = struct{}{}
		}
	}
	var cs domain.ChangeSet
	for id := range next {
		if _, ok := g.selection[id]; !ok {
			cs.Selected = append(cs.Selected, id)
		}
	}
	for id := range g.selection {
		if _, ok := next[id]; !ok {
			cs.Deselected = append(cs.Deselected, id)
		}
	}
	g.selection = next
	sort.Strings(cs.Selected)
	sort.Strings(cs.Deselected)
	g.mu.Unlock()

	g.notifier.Emit(cs)
}

// ClearSelection empties the selection set.
func (g *Graph) ClearSelection() {
	g.SetSelection(nil)
}

// Selection returns the selected block ids, sorted.
func (g *Graph) Selection() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.selection))
	for id := range g.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports whether the block is in the selection set.
func (g *Graph) IsSelected(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.selection[id]
	return ok
}
