package app

import (
	"blocksgraph/internal/history"
)

// ============================================================
// Undo tree bindings
// ============================================================

// Undo steps back one history node and restores it. Returns false at
// the root.
func (a *App) Undo() (bool, error) {
	snap, ok := a.history.Undo()
	if !ok {
		return false, nil
	}
	if err := a.graph.Restore(snap); err != nil {
		return false, err
	}
	return true, nil
}

// Redo steps forward along the newest branch. Returns false at a leaf.
func (a *App) Redo() (bool, error) {
	snap, ok := a.history.Redo()
	if !ok {
		return false, nil
	}
	if err := a.graph.Restore(snap); err != nil {
		return false, err
	}
	return true, nil
}

// GoToHistoryNode jumps to an arbitrary node in the tree.
func (a *App) GoToHistoryNode(id string) error {
	snap, err := a.history.GoTo(id)
	if err != nil {
		return err
	}
	return a.graph.Restore(snap)
}

// GetHistoryTree returns the full tree for the history panel.
func (a *App) GetHistoryTree() history.Tree {
	return a.history.Tree()
}
