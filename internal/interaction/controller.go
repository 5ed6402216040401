package interaction

import (
	"math"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Interaction Controller — pointer gesture state machine
// ─────────────────────────────────────────────────────────────

// State names the gesture the controller is currently tracking.
type State string

const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateResizing   State = "resizing"
	StateMarquee    State = "marquee"
	StateConnecting State = "connecting"
)

// PointerEvent is one normalized pointer or key event from the
// renderer, in world coordinates.
type PointerEvent struct {
	Type      EventType `json:"type"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Key       string    `json:"key,omitempty"`
	Modifiers Modifiers `json:"modifiers"`
}

type EventType string

const (
	PointerDown EventType = "down"
	PointerMove EventType = "move"
	PointerUp   EventType = "up"
	KeyDown     EventType = "keydown"
)

// Modifiers carries the modifier keys held during the event.
type Modifiers struct {
	Shift bool `json:"shift"`
	Alt   bool `json:"alt"`
}

// SnapConfig controls grid snapping of committed geometry.
type SnapConfig struct {
	Enabled  bool    `json:"enabled"`
	GridSize float64 `json:"gridSize"`
}

// Preview is the transient gesture state the renderer draws each
// frame. It never reflects committed state; the engine stays untouched
// until release.
type Preview struct {
	State   State                      `json:"state"`
	Blocks  map[string]domain.Geometry `json:"blocks,omitempty"`
	Marquee *domain.Geometry           `json:"marquee,omitempty"`
	Hover   []string                   `json:"hover,omitempty"`

	ConnectSource string        `json:"connectSource,omitempty"`
	ConnectAnchor domain.Anchor `json:"connectAnchor,omitempty"`
	ConnectTarget string        `json:"connectTarget,omitempty"`
	CursorX       float64       `json:"cursorX"`
	CursorY       float64       `json:"cursorY"`
}

// Hit zones, in world units.
const (
	cornerZone = 8.0
	anchorZone = 10.0
	minExtent  = 10.0
)

// Controller translates raw pointer events into atomic engine
// commits. Moves update a preview only; the single mutation happens on
// release. Escape (or capture loss) cancels the gesture and leaves the
// graph exactly as it was when the gesture started.
type Controller struct {
	graph *service.Graph
	snap  SnapConfig

	state  State
	startX float64
	startY float64
	curX   float64
	curY   float64

	// Dragging / Resizing
	origin   map[string]domain.Geometry
	resizeID string
	fixedX   float64
	fixedY   float64

	// Connecting
	connectSource string
	connectAnchor domain.Anchor

	// Selection as it was before the gesture, for Cancel.
	baseSelection []string
	additive      bool
}

// NewController wires a controller to the graph it commits into.
func NewController(graph *service.Graph, snap SnapConfig) *Controller {
	return &Controller{graph: graph, snap: snap, state: StateIdle}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// SetSnap replaces the snapping configuration.
func (c *Controller) SetSnap(snap SnapConfig) { c.snap = snap }

// Handle feeds one event through the state machine.
func (c *Controller) Handle(ev PointerEvent) error {
	switch ev.Type {
	case PointerDown:
		return c.down(ev)
	case PointerMove:
		c.move(ev)
		return nil
	case PointerUp:
		return c.up(ev)
	case KeyDown:
		if ev.Key == "Escape" {
			c.Cancel()
		}
		return nil
	}
	return nil
}

// Preview returns what the renderer should draw for the in-flight
// gesture. Idle returns a zero preview.
func (c *Controller) Preview() Preview {
	p := Preview{State: c.state, CursorX: c.curX, CursorY: c.curY}
	switch c.state {
	case StateDragging:
		p.Blocks = c.previewGeometries(c.dragDelta())
	case StateResizing:
		geom := c.resizeGeometry()
		p.Blocks = map[string]domain.Geometry{c.resizeID: geom}
	case StateMarquee:
		r := c.marqueeRect()
		p.Marquee = &r
		p.Hover = c.graph.QueryRect(r)
	case StateConnecting:
		p.ConnectSource = c.connectSource
		p.ConnectAnchor = c.connectAnchor
		if hits := c.graph.QueryPoint(c.curX, c.curY); len(hits) > 0 && hits[0] != c.connectSource {
			p.ConnectTarget = hits[0]
		}
	}
	return p
}

// Cancel aborts the in-flight gesture: the preview is dropped, the
// selection is restored to its pre-gesture contents, and no geometry
// changes. Safe to call in Idle.
func (c *Controller) Cancel() {
	if c.state == StateIdle {
		return
	}
	restore := c.baseSelection
	c.reset()
	c.graph.SetSelection(restore)
}

// ── Down: classify the gesture ─────────────────────────────

func (c *Controller) down(ev PointerEvent) error {
	if c.state != StateIdle {
		// A second press while tracking means capture got confused;
		// drop the old gesture before starting over.
		c.Cancel()
	}
	c.startX, c.startY = ev.X, ev.Y
	c.curX, c.curY = ev.X, ev.Y
	c.baseSelection = c.graph.Selection()
	c.additive = ev.Modifiers.Shift

	hits := c.graph.QueryPoint(ev.X, ev.Y)
	if len(hits) == 0 {
		c.state = StateMarquee
		return nil
	}

	id := hits[0]
	b, ok := c.graph.GetBlock(id)
	if !ok {
		c.state = StateMarquee
		return nil
	}

	if anchor, on := anchorAt(b.Geometry, ev.X, ev.Y); on {
		c.state = StateConnecting
		c.connectSource = id
		c.connectAnchor = anchor
		return nil
	}

	if cx, cy, on := cornerAt(b.Geometry, ev.X, ev.Y); on {
		c.state = StateResizing
		c.resizeID = id
		c.fixedX, c.fixedY = cx, cy
		c.origin = map[string]domain.Geometry{id: b.Geometry}
		return nil
	}

	// Body press: pressing an unselected block makes it the selection
	// (shift adds instead); the whole selection then drags together.
	if !c.graph.IsSelected(id) {
		if ev.Modifiers.Shift {
			c.graph.SetSelection(append(c.graph.Selection(), id))
		} else {
			c.graph.SetSelection([]string{id})
		}
	}
	c.state = StateDragging
	c.origin = make(map[string]domain.Geometry)
	for _, sel := range c.graph.Selection() {
		if sb, ok := c.graph.GetBlock(sel); ok {
			c.origin[sel] = sb.Geometry
		}
	}
	return nil
}

// ── Move: preview only ─────────────────────────────────────

func (c *Controller) move(ev PointerEvent) {
	if c.state == StateIdle {
		return
	}
	c.curX, c.curY = ev.X, ev.Y
}

// ── Up: single atomic commit ───────────────────────────────

func (c *Controller) up(ev PointerEvent) error {
	if c.state == StateIdle {
		return nil
	}
	c.curX, c.curY = ev.X, ev.Y
	state := c.state

	switch state {
	case StateDragging:
		dx, dy := c.dragDelta()
		moves := c.previewGeometries(dx, dy)
		c.reset()
		if dx == 0 && dy == 0 {
			return nil
		}
		return c.graph.MoveBlocks(moves)

	case StateResizing:
		id := c.resizeID
		geom := c.resizeGeometry()
		orig := c.origin[id]
		c.reset()
		if geom == orig {
			return nil
		}
		return c.graph.MoveBlock(id, geom)

	case StateMarquee:
		r := c.marqueeRect()
		next := c.graph.QueryRect(r)
		if c.additive {
			next = append(next, c.baseSelection...)
		}
		c.reset()
		c.graph.SetSelection(next)
		return nil

	case StateConnecting:
		source := c.connectSource
		anchor := c.connectAnchor
		c.reset()
		hits := c.graph.QueryPoint(ev.X, ev.Y)
		if len(hits) == 0 {
			return nil // released over empty canvas: abort
		}
		target := hits[0]
		_, err := c.graph.Connect(source, target, domain.ConnectionMeta{
			SourceAnchor: anchor,
		})
		if domain.IsValidation(err) {
			return nil // policy said no: abort, not an error
		}
		return err
	}
	return nil
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.origin = nil
	c.resizeID = ""
	c.connectSource = ""
	c.connectAnchor = ""
	c.baseSelection = nil
	c.additive = false
}

// ── Geometry helpers ───────────────────────────────────────

func (c *Controller) dragDelta() (dx, dy float64) {
	return c.curX - c.startX, c.curY - c.startY
}

func (c *Controller) previewGeometries(dx, dy float64) map[string]domain.Geometry {
	out := make(map[string]domain.Geometry, len(c.origin))
	for id, g := range c.origin {
		g.X = c.snapCoord(g.X + dx)
		g.Y = c.snapCoord(g.Y + dy)
		out[id] = g
	}
	return out
}

func (c *Controller) resizeGeometry() domain.Geometry {
	x := c.snapCoord(c.curX)
	y := c.snapCoord(c.curY)
	g := domain.Geometry{
		X:      math.Min(c.fixedX, x),
		Y:      math.Min(c.fixedY, y),
		Width:  math.Abs(x - c.fixedX),
		Height: math.Abs(y - c.fixedY),
	}
	if g.Width < minExtent {
		g.Width = minExtent
		if x < c.fixedX {
			g.X = c.fixedX - minExtent
		} else {
			g.X = c.fixedX
		}
	}
	if g.Height < minExtent {
		g.Height = minExtent
		if y < c.fixedY {
			g.Y = c.fixedY - minExtent
		} else {
			g.Y = c.fixedY
		}
	}
	return g
}

func (c *Controller) marqueeRect() domain.Geometry {
	return domain.Geometry{
		X:      math.Min(c.startX, c.curX),
		Y:      math.Min(c.startY, c.curY),
		Width:  math.Abs(c.curX - c.startX),
		Height: math.Abs(c.curY - c.startY),
	}.Normalized()
}

func (c *Controller) snapCoord(v float64) float64 {
	if !c.snap.Enabled || c.snap.GridSize <= 0 {
		return v
	}
	return math.Round(v/c.snap.GridSize) * c.snap.GridSize
}

// cornerAt reports whether (x, y) is within the resize zone of one of
// the rectangle's corners, returning the opposite (fixed) corner.
func cornerAt(g domain.Geometry, x, y float64) (fixedX, fixedY float64, ok bool) {
	corners := [4][2]float64{
		{g.X, g.Y},
		{g.X + g.Width, g.Y},
		{g.X, g.Y + g.Height},
		{g.X + g.Width, g.Y + g.Height},
	}
	for _, corner := range corners {
		if math.Abs(x-corner[0]) <= cornerZone && math.Abs(y-corner[1]) <= cornerZone {
			// Opposite corner stays put while the grabbed one follows
			// the pointer.
			fx := g.X
			if corner[0] == g.X {
				fx = g.X + g.Width
			}
			fy := g.Y
			if corner[1] == g.Y {
				fy = g.Y + g.Height
			}
			return fx, fy, true
		}
	}
	return 0, 0, false
}

// anchorAt reports whether (x, y) is within the connect zone at one of
// the rectangle's edge midpoints.
func anchorAt(g domain.Geometry, x, y float64) (domain.Anchor, bool) {
	mids := []struct {
		anchor domain.Anchor
		mx, my float64
	}{
		{domain.AnchorTop, g.X + g.Width/2, g.Y},
		{domain.AnchorBottom, g.X + g.Width/2, g.Y + g.Height},
		{domain.AnchorLeft, g.X, g.Y + g.Height/2},
		{domain.AnchorRight, g.X + g.Width, g.Y + g.Height/2},
	}
	for _, m := range mids {
		if math.Abs(x-m.mx) <= anchorZone && math.Abs(y-m.my) <= anchorZone {
			return m.anchor, true
		}
	}
	return "", false
}
