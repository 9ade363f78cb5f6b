package valueobjects

import "math"

// Position is a 2-D point in layout (world) coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Add returns p + o
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale returns p * k
func (p Position) Scale(k float64) Position {
	return Position{X: p.X * k, Y: p.Y * k}
}

// DistanceTo returns the euclidean distance between two positions
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Equals compares with a small tolerance
func (p Position) Equals(o Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.X-o.X) < epsilon && math.Abs(p.Y-o.Y) < epsilon
}
