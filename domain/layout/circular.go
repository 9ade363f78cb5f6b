package layout

import (
	"math"

	"peoplenet/domain/core/valueobjects"
)

// Circular places the root at the center and every other node evenly on a
// circle, in scene order starting at angle zero. The result is a pure
// function of node order so repeated calls agree.
func Circular(nodes []Node, width, height, radius float64) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)

	center := valueobjects.NewPosition(width/2, height/2)
	ring := 0
	for _, n := range out {
		if n.Kind != NodeRoot {
			ring++
		}
	}

	i := 0
	for k := range out {
		if out[k].Kind == NodeRoot {
			out[k].Position = center
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(ring)
		out[k].Position = valueobjects.NewPosition(
			center.X+radius*math.Cos(angle),
			center.Y+radius*math.Sin(angle),
		)
		i++
	}
	return out
}
