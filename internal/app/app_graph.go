package app

import (
	"blocksgraph/internal/domain"
	"blocksgraph/internal/layout"
)

// ============================================================
// Graph bindings
// ============================================================

// GraphState is the full view the frontend loads on mount.
type GraphState struct {
	Blocks      []domain.Block      `json:"blocks"`
	Connections []domain.Connection `json:"connections"`
	Selection   []string            `json:"selection"`
}

func (a *App) GetGraphState() GraphState {
	return GraphState{
		Blocks:      a.graph.ListBlocks(),
		Connections: a.graph.ListConnections(),
		Selection:   a.graph.Selection(),
	}
}

func (a *App) CreateBlock(x, y, w, h float64, label, kind string) (domain.Block, error) {
	b, err := a.graph.AddBlock(domain.Geometry{X: x, Y: y, Width: w, Height: h},
		domain.BlockMeta{Label: label, Kind: kind})
	if err != nil {
		return domain.Block{}, err
	}
	a.history.Push("create block", a.graph.Snapshot())
	return b, nil
}

// CreateBlockAuto places a new block at the first free spot.
func (a *App) CreateBlockAuto(w, h float64, label, kind string) (domain.Block, error) {
	x, y := a.layout.NextPosition(a.graph.ListBlocks(), w, h)
	return a.CreateBlock(x, y, w, h, label, kind)
}

func (a *App) DeleteBlock(id string) error {
	if err := a.graph.RemoveBlock(id); err != nil {
		return err
	}
	a.history.Push("delete block", a.graph.Snapshot())
	return nil
}

func (a *App) MoveBlock(id string, x, y, w, h float64) error {
	if err := a.graph.MoveBlock(id, domain.Geometry{X: x, Y: y, Width: w, Height: h}); err != nil {
		return err
	}
	a.history.Push("move block", a.graph.Snapshot())
	return nil
}

func (a *App) RaiseBlock(id string) error {
	return a.graph.RaiseBlock(id)
}

func (a *App) SetBlockMeta(id, label, kind string) error {
	if err := a.graph.SetBlockMeta(id, domain.BlockMeta{Label: label, Kind: kind}); err != nil {
		return err
	}
	a.history.Push("edit block", a.graph.Snapshot())
	return nil
}

func (a *App) CreateConnection(sourceID, targetID, label, style string) (domain.Connection, error) {
	c, err := a.graph.Connect(sourceID, targetID, domain.ConnectionMeta{
		Label: label,
		Style: domain.ConnectionStyle(style),
	})
	if err != nil {
		return domain.Connection{}, err
	}
	a.history.Push("connect", a.graph.Snapshot())
	return c, nil
}

func (a *App) DeleteConnection(id string) error {
	if err := a.graph.Disconnect(id); err != nil {
		return err
	}
	a.history.Push("disconnect", a.graph.Snapshot())
	return nil
}

func (a *App) ConnectionsFor(blockID string) []domain.Connection {
	return a.graph.ConnectionsFor(blockID)
}

// HitTest returns block ids under the point, topmost first.
func (a *App) HitTest(x, y float64) []string {
	return a.graph.QueryPoint(x, y)
}

// QueryRegion returns block ids intersecting the rectangle.
func (a *App) QueryRegion(x, y, w, h float64) []string {
	return a.graph.QueryRect(domain.Geometry{X: x, Y: y, Width: w, Height: h})
}

func (a *App) Select(ids []string) {
	a.graph.SetSelection(ids)
}

func (a *App) ClearSelection() {
	a.graph.ClearSelection()
}

// ArrangeBlocks re-flows every block into rows from the origin.
func (a *App) ArrangeBlocks() error {
	moves := a.layout.ArrangeGrid(a.graph.ListBlocks(), 0, 0)
	if err := a.graph.MoveBlocks(moves); err != nil {
		return err
	}
	a.history.Push("arrange", a.graph.Snapshot())
	return nil
}

// RouteConnection returns an obstacle-aware orthogonal polyline for
// the connection, in world coordinates, for the renderer to draw.
func (a *App) RouteConnection(id string) ([][]float64, error) {
	c, ok := a.graph.GetConnection(id)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeConnectionNotFound, "connection %s", id)
	}
	src, ok := a.graph.GetBlock(c.SourceID)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeBlockNotFound, "block %s", c.SourceID)
	}
	dst, ok := a.graph.GetBlock(c.TargetID)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeBlockNotFound, "block %s", c.TargetID)
	}
	obstacles := a.graph.Obstacles(c.SourceID, c.TargetID)
	return layout.Route(src, dst, c.SourceAnchor, c.TargetAnchor, obstacles), nil
}
