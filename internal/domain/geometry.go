package domain

import "math"

// Geometry is a block's position and size on the canvas.
// It is a plain value: callers replace it wholesale instead of mutating
// fields in place, so derived structures never see a half-updated box.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate rejects non-finite coordinates and degenerate extents.
func (g Geometry) Validate() error {
	for _, v := range []float64{g.X, g.Y, g.Width, g.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewError(ErrCodeInvalidGeometry, "geometry values must be finite")
		}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return NewError(ErrCodeInvalidGeometry, "width and height must be positive (got %.2f × %.2f)", g.Width, g.Height)
	}
	return nil
}

// Contains reports whether the point (x, y) lies inside the box.
// Edges count as inside.
func (g Geometry) Contains(x, y float64) bool {
	return x >= g.X && x <= g.X+g.Width && y >= g.Y && y <= g.Y+g.Height
}

// Intersects reports whether two boxes overlap. Touching edges do not count.
func (g Geometry) Intersects(o Geometry) bool {
	return g.X < o.X+o.Width && g.X+g.Width > o.X &&
		g.Y < o.Y+o.Height && g.Y+g.Height > o.Y
}

// Empty reports whether the box has no interior (zero or negative extent).
// Region queries treat such rectangles as matching nothing.
func (g Geometry) Empty() bool {
	return g.Width <= 0 || g.Height <= 0
}

// Normalized returns the box with negative extents folded back so that
// width/height are non-negative. Marquee rectangles dragged up-left
// arrive denormalized.
func (g Geometry) Normalized() Geometry {
	if g.Width < 0 {
		g.X += g.Width
		g.Width = -g.Width
	}
	if g.Height < 0 {
		g.Y += g.Height
		g.Height = -g.Height
	}
	return g
}
