package layout

import (
	"math"

	"blocksgraph/internal/domain"
)

const (
	// DefaultGridSize matches the renderer's canvas grid.
	DefaultGridSize = 30.0
	// DefaultPadding keeps two grid cells between placed blocks.
	DefaultPadding = 60.0
	// DefaultMaxRowWidth bounds the row flow of automatic arrangement.
	DefaultMaxRowWidth = 1800.0
)

// Engine places blocks on the canvas: it finds free positions for
// programmatically created blocks and re-flows groups into rows.
type Engine struct {
	gridSize    float64
	padding     float64
	maxRowWidth float64
}

// NewEngine returns an engine with the given grid size; zero or
// negative means the default. Padding and row width follow the grid.
func NewEngine(gridSize float64) *Engine {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return &Engine{
		gridSize:    gridSize,
		padding:     DefaultPadding,
		maxRowWidth: DefaultMaxRowWidth,
	}
}

// Snap rounds v to the nearest grid point.
func (e *Engine) Snap(v float64) float64 {
	return math.Round(v/e.gridSize) * e.gridSize
}

// NextPosition finds the first free grid position for a block of the
// given size, scanning rows top to bottom and columns left to right.
// Existing blocks are padded so neighbors don't touch.
func (e *Engine) NextPosition(existing []domain.Block, width, height float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	padded := make([]domain.Geometry, len(existing))
	for i, b := range existing {
		padded[i] = domain.Geometry{
			X:      b.Geometry.X - e.padding,
			Y:      b.Geometry.Y - e.padding,
			Width:  b.Geometry.Width + e.padding*2,
			Height: b.Geometry.Height + e.padding*2,
		}
	}

	const scanLimit = 100000
	for y := 0.0; y < scanLimit; y += e.gridSize {
		for x := 0.0; x < e.maxRowWidth; x += e.gridSize {
			candidate := domain.Geometry{X: e.Snap(x), Y: e.Snap(y), Width: width, Height: height}
			free := true
			for _, occ := range padded {
				if candidate.Intersects(occ) {
					free = false
					break
				}
			}
			if free {
				return candidate.X, candidate.Y
			}
		}
	}

	// Everything scanned is occupied: place below the lowest block.
	maxY := 0.0
	for _, b := range existing {
		if bottom := b.Geometry.Y + b.Geometry.Height; bottom > maxY {
			maxY = bottom
		}
	}
	return 0, e.Snap(maxY + e.padding)
}

// ArrangeGrid flows the blocks into rows starting at (startX, startY),
// wrapping when a row would exceed the maximum row width. It returns
// the new geometry per block id, ready for an atomic batch move; sizes
// are untouched.
func (e *Engine) ArrangeGrid(blocks []domain.Block, startX, startY float64) map[string]domain.Geometry {
	moves := make(map[string]domain.Geometry, len(blocks))
	x := e.Snap(startX)
	y := e.Snap(startY)
	rowHeight := 0.0

	for _, b := range blocks {
		g := b.Geometry
		g.X = x
		g.Y = y
		moves[b.ID] = g

		if g.Height > rowHeight {
			rowHeight = g.Height
		}
		x += e.Snap(g.Width + e.padding)
		if x+g.Width > e.maxRowWidth {
			x = e.Snap(startX)
			y += e.Snap(rowHeight + e.padding)
			rowHeight = 0
		}
	}
	return moves
}
