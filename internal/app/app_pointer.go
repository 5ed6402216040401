package app

import (
	"blocksgraph/internal/config"
	"blocksgraph/internal/interaction"
)

// ============================================================
// Pointer gesture bindings
// ============================================================

func (a *App) PointerDown(x, y float64, shift, alt bool) error {
	return a.controller.Handle(interaction.PointerEvent{
		Type: interaction.PointerDown, X: x, Y: y,
		Modifiers: interaction.Modifiers{Shift: shift, Alt: alt},
	})
}

func (a *App) PointerMove(x, y float64) error {
	return a.controller.Handle(interaction.PointerEvent{
		Type: interaction.PointerMove, X: x, Y: y,
	})
}

// PointerUp commits the in-flight gesture. When the commit changed
// blocks or connections, a history node is recorded for it.
func (a *App) PointerUp(x, y float64, shift, alt bool) error {
	a.structuralChange = false
	err := a.controller.Handle(interaction.PointerEvent{
		Type: interaction.PointerUp, X: x, Y: y,
		Modifiers: interaction.Modifiers{Shift: shift, Alt: alt},
	})
	if err == nil && a.structuralChange {
		a.history.Push("gesture", a.graph.Snapshot())
	}
	return err
}

func (a *App) KeyDown(key string) error {
	return a.controller.Handle(interaction.PointerEvent{
		Type: interaction.KeyDown, Key: key,
	})
}

// CancelGesture aborts the current gesture, e.g. on pointer capture
// loss.
func (a *App) CancelGesture() {
	a.controller.Cancel()
}

// GetPreview returns the transient gesture state for the renderer's
// per-frame draw.
func (a *App) GetPreview() interaction.Preview {
	return a.controller.Preview()
}

// GetGestureState returns the controller's current state name.
func (a *App) GetGestureState() string {
	return string(a.controller.State())
}

// SetSnapping toggles grid snapping at runtime and persists it.
func (a *App) SetSnapping(enabled bool, gridSize float64) {
	if gridSize <= 0 {
		gridSize = a.cfg.Snap.GridSize
	}
	a.cfg.Snap.Enabled = enabled
	a.cfg.Snap.GridSize = gridSize
	a.controller.SetSnap(interaction.SnapConfig{Enabled: enabled, GridSize: gridSize})
	config.Save(a.cfg)
}
