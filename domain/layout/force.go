package layout

import (
	"context"
	"fmt"
	"math"
	"sync"

	"peoplenet/domain/config"
	"peoplenet/domain/core/valueobjects"
)

// SimNode is the mutable state of one node in the force simulation
type SimNode struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Radius float64
	Pinned bool
	FX, FY float64
}

// Link connects two simulation nodes by index
type Link struct {
	Source int
	Target int
}

// Params are the force constants of a simulation
type Params struct {
	Charge          float64
	LinkDistance    float64
	LinkStrength    float64
	CenterStrength  float64
	CollisionMargin float64
	VelocityDecay   float64
	CenterX         float64
	CenterY         float64
}

// ParamsFromConfig builds simulation parameters centered in a viewport
func ParamsFromConfig(cfg *config.DomainConfig, width, height float64) Params {
	return Params{
		Charge:          cfg.ChargeStrength,
		LinkDistance:    cfg.LinkDistance,
		LinkStrength:    cfg.LinkStrength,
		CenterStrength:  cfg.CenterStrength,
		CollisionMargin: cfg.CollisionMargin,
		VelocityDecay:   cfg.VelocityDecay,
		CenterX:         width / 2,
		CenterY:         height / 2,
	}
}

const collideStrength = 0.7

// Step advances the simulation by one tick at the given alpha and returns
// the new node states. The input slice is not modified.
func Step(nodes []SimNode, links []Link, p Params, alpha, dt float64) []SimNode {
	out := make([]SimNode, len(nodes))
	copy(out, nodes)
	if len(out) == 0 {
		return out
	}

	// link springs
	for _, l := range links {
		if l.Source < 0 || l.Target < 0 || l.Source >= len(out) || l.Target >= len(out) || l.Source == l.Target {
			continue
		}
		s, t := &out[l.Source], &out[l.Target]
		dx := (t.X + t.VX) - (s.X + s.VX)
		dy := (t.Y + t.VY) - (s.Y + s.VY)
		if dx == 0 && dy == 0 {
			dx, dy = jiggle(l.Source, l.Target)
		}
		d := math.Hypot(dx, dy)
		k := (d - p.LinkDistance) / d * alpha * p.LinkStrength
		dx, dy = dx*k, dy*k
		t.VX -= dx * 0.5
		t.VY -= dy * 0.5
		s.VX += dx * 0.5
		s.VY += dy * 0.5
	}

	for i := range out {
		a := &out[i]
		for j := i + 1; j < len(out); j++ {
			b := &out[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			if dx == 0 && dy == 0 {
				dx, dy = jiggle(i, j)
			}
			d2 := dx*dx + dy*dy

			// many-body charge; negative strength repels
			w := p.Charge * alpha / math.Max(d2, 1)
			a.VX += dx * w
			a.VY += dy * w
			b.VX -= dx * w
			b.VY -= dy * w

			// collision
			r := a.Radius + b.Radius + p.CollisionMargin
			if d2 < r*r {
				d := math.Sqrt(d2)
				push := (r - d) / d * collideStrength * 0.5
				a.VX -= dx * push
				a.VY -= dy * push
				b.VX += dx * push
				b.VY += dy * push
			}
		}

		// weak pull toward the center
		a.VX += (p.CenterX - a.X) * p.CenterStrength * alpha
		a.VY += (p.CenterY - a.Y) * p.CenterStrength * alpha
	}

	keep := 1 - p.VelocityDecay
	for i := range out {
		n := &out[i]
		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX * dt
		n.Y += n.VY * dt
	}
	return out
}

// jiggle separates coincident nodes by a tiny deterministic offset
func jiggle(i, j int) (float64, float64) {
	h := float64((i*31+j*17)%7+1) * 1e-6
	return h, -h
}

// Simulation runs the force layout with alpha cooling. Pinned nodes hold
// their position until released while the rest keep moving.
type Simulation struct {
	mu          sync.Mutex
	nodes       []SimNode
	links       []Link
	index       map[string]int
	params      Params
	alpha       float64
	alphaMin    float64
	alphaDecay  float64
	alphaTarget float64
	ticks       int
	stopped     bool
}

// NewSimulation seeds a simulation from a scene. Nodes that already carry a
// position keep it; the rest are placed on a phyllotaxis spiral around the
// center so the initial state is deterministic.
func NewSimulation(scene Scene, width, height float64, cfg *config.DomainConfig) *Simulation {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	s := &Simulation{
		params:     ParamsFromConfig(cfg, width, height),
		alphaMin:   cfg.AlphaMin,
		alphaDecay: cfg.AlphaDecay,
	}
	s.setGraph(scene)
	return s
}

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

func (s *Simulation) setGraph(scene Scene) {
	prev := s.index
	prevNodes := s.nodes

	s.nodes = make([]SimNode, len(scene.Nodes))
	s.index = make(map[string]int, len(scene.Nodes))
	for i, n := range scene.Nodes {
		sn := SimNode{ID: n.ID, Radius: n.Radius}
		switch {
		case prev != nil && hasIndex(prev, n.ID):
			sn = prevNodes[prev[n.ID]]
			sn.Radius = n.Radius
		case n.Position != (valueobjects.Position{}):
			sn.X, sn.Y = n.Position.X, n.Position.Y
		default:
			r := 10 * math.Sqrt(0.5+float64(i))
			a := float64(i) * goldenAngle
			sn.X = s.params.CenterX + r*math.Cos(a)
			sn.Y = s.params.CenterY + r*math.Sin(a)
		}
		s.nodes[i] = sn
		s.index[n.ID] = i
	}

	s.links = s.links[:0]
	for _, e := range scene.Edges {
		src, ok1 := s.index[e.Source]
		tgt, ok2 := s.index[e.Target]
		if ok1 && ok2 {
			s.links = append(s.links, Link{Source: src, Target: tgt})
		}
	}
	s.alpha = 1
	s.ticks = 0
	s.stopped = false
}

func hasIndex(m map[string]int, id string) bool {
	_, ok := m[id]
	return ok
}

// SetGraph replaces the node and edge set and reheats. Nodes present
// before keep their position and velocity.
func (s *Simulation) SetGraph(scene Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setGraph(scene)
}

// Tick advances one step. It reports false once alpha has cooled below the
// minimum or the simulation was stopped.
func (s *Simulation) Tick() bool {
	_, more := s.tick()
	return more
}

// tick reports whether a step ran and whether the simulation is still warm.
// The cooling step runs and then reports more=false.
func (s *Simulation) tick() (stepped, more bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false, false
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	s.nodes = Step(s.nodes, s.links, s.params, s.alpha, 1)
	s.ticks++
	if s.alpha < s.alphaMin {
		s.stopped = true
		return true, false
	}
	return true, true
}

// Run ticks until the simulation cools, maxTicks is reached or ctx is done.
// It returns the number of ticks executed.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		stepped, more := s.tick()
		if stepped {
			n++
		}
		if !more {
			break
		}
	}
	return n, nil
}

// Pin fixes a node at a position until Release is called
func (s *Simulation) Pin(id string, pos valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("layout: unknown node %q", id)
	}
	n := &s.nodes[i]
	n.Pinned = true
	n.FX, n.FY = pos.X, pos.Y
	n.X, n.Y = pos.X, pos.Y
	n.VX, n.VY = 0, 0
	return nil
}

// Release unpins a node
func (s *Simulation) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		s.nodes[i].Pinned = false
	}
}

// DragStart pins a node where it is and keeps the simulation warm
func (s *Simulation) DragStart(id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("layout: unknown node %q", id)
	}
	pos := valueobjects.NewPosition(s.nodes[i].X, s.nodes[i].Y)
	s.alphaTarget = 0.3
	s.stopped = false
	s.mu.Unlock()
	return s.Pin(id, pos)
}

// DragTo moves a dragged node
func (s *Simulation) DragTo(id string, pos valueobjects.Position) error {
	return s.Pin(id, pos)
}

// DragEnd lets the simulation cool again. The node stays pinned unless
// release is set.
func (s *Simulation) DragEnd(id string, release bool) {
	s.mu.Lock()
	s.alphaTarget = 0
	s.mu.Unlock()
	if release {
		s.Release(id)
	}
}

// Restart reheats the simulation to the given alpha
func (s *Simulation) Restart(alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = alpha
	s.stopped = false
}

// Stop halts ticking until Restart
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether ticking has halted
func (s *Simulation) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Alpha returns the current temperature
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Ticks returns how many ticks ran since the last reset
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Nodes returns a copy of the node states
func (s *Simulation) Nodes() []SimNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SimNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Positions returns the current position of every node by id
func (s *Simulation) Positions() map[string]valueobjects.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]valueobjects.Position, len(s.nodes))
	for _, n := range s.nodes {
		out[n.ID] = valueobjects.NewPosition(n.X, n.Y)
	}
	return out
}

// Apply copies simulated positions onto scene nodes
func (s *Simulation) Apply(nodes []Node) []Node {
	pos := s.Positions()
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if p, ok := pos[out[i].ID]; ok {
			out[i].Position = p
		}
	}
	return out
}
