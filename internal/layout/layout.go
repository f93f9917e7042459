// Package layout computes the force-directed arrangement of a concept graph.
//
// State is a dense arena of bodies addressed by the node's index in the
// graph model. Step advances it in place; Simulation adds the iteration
// budget after which positions stop changing.
package layout

import (
	"math"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

// Params holds the simulation constants.
type Params struct {
	RepelStrength   float64 `toml:"repel_strength"`
	AttractStrength float64 `toml:"attract_strength"`
	Gravity         float64 `toml:"gravity"`
	Alpha           float64 `toml:"alpha"`
	Damping         float64 `toml:"damping"`
	Padding         float64 `toml:"padding"`
	MaxIterations   int     `toml:"max_iterations"`
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		RepelStrength:   1000,
		AttractStrength: 0.01,
		Gravity:         0.001,
		Alpha:           0.1,
		Damping:         0.9,
		Padding:         50,
		MaxIterations:   300,
	}
}

const (
	minRadius    = 8
	maxRadius    = 20
	placeFactor  = 0.3
	minDistance  = 1.0
	radiusFactor = 2
)

// Body is the kinematic state of one node.
type Body struct {
	X, Y   float64
	VX, VY float64
	Radius float64
}

// State is the kinematic state of every node of one model, in model order.
type State struct {
	Width, Height float64
	Bodies        []Body
}

// Radius maps a node's size to its circle radius.
func Radius(size float64) float64 {
	return math.Max(minRadius, math.Min(maxRadius, size*radiusFactor))
}

// Place puts the i-th of n nodes at angle 2πi/n on a circle of radius
// 0.3·min(width, height) around the viewport centre, at rest.
func Place(m *graph.Model, width, height float64) *State {
	n := m.Len()
	s := &State{Width: width, Height: height, Bodies: make([]Body, n)}
	cx, cy := width/2, height/2
	r := math.Min(width, height) * placeFactor
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		s.Bodies[i] = Body{
			X:      cx + math.Cos(angle)*r,
			Y:      cy + math.Sin(angle)*r,
			Radius: Radius(m.Node(i).Size),
		}
	}
	return s
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{Width: s.Width, Height: s.Height, Bodies: append([]Body(nil), s.Bodies...)}
}

// neighbor is one end of an undirected link, seen from the other end.
type neighbor struct {
	other  int
	weight float64
}

// adjacency lists incident links per node. Each link shows up on both ends;
// a self-link only once.
func adjacency(n int, links []graph.Link) [][]neighbor {
	adj := make([][]neighbor, n)
	for _, l := range links {
		adj[l.A] = append(adj[l.A], neighbor{other: l.B, weight: l.Weight})
		if l.A != l.B {
			adj[l.B] = append(adj[l.B], neighbor{other: l.A, weight: l.Weight})
		}
	}
	return adj
}

// Step runs one tick over s in place. Nodes are updated in order and each
// node reads the others as they are at that point of the pass.
func Step(s *State, links []graph.Link, p Params) {
	step(s, adjacency(len(s.Bodies), links), p)
}

func step(s *State, adj [][]neighbor, p Params) {
	cx, cy := s.Width/2, s.Height/2
	bodies := s.Bodies

	for i := range bodies {
		a := &bodies[i]
		var fx, fy float64

		for j := range bodies {
			if i == j {
				continue
			}
			dx := bodies[j].X - a.X
			dy := bodies[j].Y - a.Y
			dist := math.Max(math.Hypot(dx, dy), minDistance)
			f := p.RepelStrength / (dist * dist)
			fx -= dx / dist * f
			fy -= dy / dist * f
		}

		for _, nb := range adj[i] {
			b := bodies[nb.other]
			fx += (b.X - a.X) * p.AttractStrength * nb.weight
			fy += (b.Y - a.Y) * p.AttractStrength * nb.weight
		}

		fx += (cx - a.X) * p.Gravity
		fy += (cy - a.Y) * p.Gravity

		a.VX += fx * p.Alpha
		a.VY += fy * p.Alpha
		a.X += a.VX * p.Alpha
		a.Y += a.VY * p.Alpha
		a.VX *= p.Damping
		a.VY *= p.Damping

		a.X = clamp(a.X, p.Padding, s.Width-p.Padding)
		a.Y = clamp(a.Y, p.Padding, s.Height-p.Padding)
	}
}

// clamp keeps v inside [lo, hi]. An inverted range collapses to its midpoint.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
