package layout

import (
	"math"

	"peoplenet/domain/core/valueobjects"
)

// Camera is a pan and zoom transform from world to screen coordinates
type Camera struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	K       float64 `json:"k"`
	MinZoom float64 `json:"-"`
	MaxZoom float64 `json:"-"`
}

// NewCamera returns the identity transform with the given zoom bounds
func NewCamera(minZoom, maxZoom float64) *Camera {
	if minZoom <= 0 {
		minZoom = 0.1
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	return &Camera{K: 1, MinZoom: minZoom, MaxZoom: maxZoom}
}

// ToScreen maps a world position to the screen
func (c *Camera) ToScreen(p valueobjects.Position) valueobjects.Position {
	return valueobjects.NewPosition(p.X*c.K+c.X, p.Y*c.K+c.Y)
}

// ToWorld maps a screen position back to the world
func (c *Camera) ToWorld(p valueobjects.Position) valueobjects.Position {
	return valueobjects.NewPosition((p.X-c.X)/c.K, (p.Y-c.Y)/c.K)
}

// Pan translates the view by a screen-space delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// ZoomAt scales by factor while keeping the world point under the screen
// anchor fixed. The scale is clamped to the zoom bounds.
func (c *Camera) ZoomAt(factor float64, anchor valueobjects.Position) {
	if factor <= 0 {
		return
	}
	world := c.ToWorld(anchor)
	k := c.K * factor
	if k < c.MinZoom {
		k = c.MinZoom
	}
	if k > c.MaxZoom {
		k = c.MaxZoom
	}
	c.K = k
	c.X = anchor.X - world.X*k
	c.Y = anchor.Y - world.Y*k
}

// Fit zooms and pans so every node, radius included, is visible inside a
// width x height viewport with padding on each side. The scale never
// exceeds 1 so small graphs are not blown up.
func (c *Camera) Fit(nodes []Node, width, height, padding float64) {
	if len(nodes) == 0 || width <= 0 || height <= 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X-n.Radius)
		minY = math.Min(minY, n.Position.Y-n.Radius)
		maxX = math.Max(maxX, n.Position.X+n.Radius)
		maxY = math.Max(maxY, n.Position.Y+n.Radius)
	}

	k := 1.0
	if w := maxX - minX; w > 0 {
		k = math.Min(k, (width-2*padding)/w)
	}
	if h := maxY - minY; h > 0 {
		k = math.Min(k, (height-2*padding)/h)
	}
	c.K = math.Max(c.MinZoom, math.Min(c.MaxZoom, k))

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	c.X = width/2 - cx*c.K
	c.Y = height/2 - cy*c.K
}
