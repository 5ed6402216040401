package service

import (
	"sort"

	"blocksgraph/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Snapshot / Restore — the serialization boundary
// ─────────────────────────────────────────────────────────────

// Snapshot captures the whole graph in the external serialization
// shape: blocks in z-order plus all connections. Selection is transient
// UI state and is deliberately not part of it.
func (g *Graph) Snapshot() domain.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.Snapshot{
		Blocks:      g.blocks.List(),
		Connections: g.conns.List(),
	}
}

// Restore replaces the whole graph with the snapshot's contents in one
// commit, emitting a single ChangeSet describing the full delta
// against the previous state. Undo/redo and snapshot-file imports come
// through here.
//
// The snapshot is validated up front: invalid geometry or a connection
// referencing a missing block rejects the whole restore and leaves the
// current graph untouched.
func (g *Graph) Restore(snap domain.Snapshot) error {
	blockIDs := make(map[string]struct{}, len(snap.Blocks))
	for _, b := range snap.Blocks {
		if err := b.Geometry.Validate(); err != nil {
			return err
		}
		if _, dup := blockIDs[b.ID]; dup {
			return domain.NewError(domain.ErrCodeInvalidGeometry, "duplicate block id %s in snapshot", b.ID)
		}
		blockIDs[b.ID] = struct{}{}
	}
	for _, c := range snap.Connections {
		if _, ok := blockIDs[c.SourceID]; !ok {
			return domain.NewError(domain.ErrCodeBlockNotFound, "snapshot connection %s references missing source %s", c.ID, c.SourceID)
		}
		if _, ok := blockIDs[c.TargetID]; !ok {
			return domain.NewError(domain.ErrCodeBlockNotFound, "snapshot connection %s references missing target %s", c.ID, c.TargetID)
		}
	}

	g.mu.Lock()
	cs := g.restoreDelta(snap, blockIDs)

	g.blocks.Restore(snap.Blocks)
	g.conns.Restore(snap.Connections)
	g.index.Reset()
	for _, b := range snap.Blocks {
		g.index.Upsert(b.ID, b.Geometry, b.Z)
	}
	for id := range g.selection {
		if _, ok := blockIDs[id]; !ok {
			delete(g.selection, id)
		}
	}
	g.mu.Unlock()

	g.notifier.Emit(cs)
	return nil
}

// restoreDelta diffs the incoming snapshot against the current state.
// Caller holds mu.
func (g *Graph) restoreDelta(snap domain.Snapshot, blockIDs map[string]struct{}) domain.ChangeSet {
	var cs domain.ChangeSet

	for _, b := range snap.Blocks {
		cur, ok := g.blocks.Get(b.ID)
		switch {
		case !ok:
			cs.AddedBlocks = append(cs.AddedBlocks, b.ID)
		case cur.Geometry != b.Geometry || cur.Label != b.Label || cur.Kind != b.Kind || cur.Z != b.Z:
			cs.ModifiedBlocks = append(cs.ModifiedBlocks, b.ID)
		}
	}
	for _, b := range g.blocks.List() {
		if _, ok := blockIDs[b.ID]; !ok {
			cs.RemovedBlocks = append(cs.RemovedBlocks, b.ID)
			if _, sel := g.selection[b.ID]; sel {
				cs.Deselected = append(cs.Deselected, b.ID)
			}
		}
	}

	connIDs := make(map[string]struct{}, len(snap.Connections))
	for _, c := range snap.Connections {
		connIDs[c.ID] = struct{}{}
		if _, ok := g.conns.Get(c.ID); !ok {
			cs.AddedConnections = append(cs.AddedConnections, c.ID)
		}
	}
	for _, c := range g.conns.List() {
		if _, ok := connIDs[c.ID]; !ok {
			cs.RemovedConnections = append(cs.RemovedConnections, c.ID)
		}
	}

	sort.Strings(cs.AddedBlocks)
	sort.Strings(cs.RemovedBlocks)
	sort.Strings(cs.ModifiedBlocks)
	sort.Strings(cs.AddedConnections)
	sort.Strings(cs.RemovedConnections)
	sort.Strings(cs.Deselected)
	return cs
}
