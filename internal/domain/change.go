package domain

// ChangeSet is the batched delta delivered to subscribers after a
// committed mutation. Within one gesture several low-level edits may be
// coalesced into a single ChangeSet; unrelated mutations never are.
type ChangeSet struct {
	AddedBlocks    []string `json:"addedBlocks,omitempty"`
	RemovedBlocks  []string `json:"removedBlocks,omitempty"`
	ModifiedBlocks []string `json:"modifiedBlocks,omitempty"`

	AddedConnections   []string `json:"addedConnections,omitempty"`
	RemovedConnections []string `json:"removedConnections,omitempty"`

	Selected   []string `json:"selected,omitempty"`
	Deselected []string `json:"deselected,omitempty"`
}

// Empty reports whether the change set describes no delta at all.
// Empty sets are never delivered.
func (c ChangeSet) Empty() bool {
	return len(c.AddedBlocks) == 0 && len(c.RemovedBlocks) == 0 && len(c.ModifiedBlocks) == 0 &&
		len(c.AddedConnections) == 0 && len(c.RemovedConnections) == 0 &&
		len(c.Selected) == 0 && len(c.Deselected) == 0
}

// Structural reports whether the change set touches blocks or
// connections, as opposed to selection only. Undo history records a
// node per structural change; selection churn is not history.
func (c ChangeSet) Structural() bool {
	return len(c.AddedBlocks) > 0 || len(c.RemovedBlocks) > 0 || len(c.ModifiedBlocks) > 0 ||
		len(c.AddedConnections) > 0 || len(c.RemovedConnections) > 0
}

// Snapshot is the serialization shape of the whole graph: blocks in
// z-order plus all connections. Round-tripping a snapshot reproduces an
// equivalent graph (same ids, geometry, and connections).
type Snapshot struct {
	Blocks      []Block      `json:"blocks"`
	Connections []Connection `json:"connections"`
}
