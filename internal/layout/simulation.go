package layout

import (
	"math"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

// Simulation runs Step against one model until the iteration budget is spent.
// It is not safe for concurrent use; the frame loop owns it.
type Simulation struct {
	model      *graph.Model
	params     Params
	adj        [][]neighbor
	state      *State
	iterations int
}

// NewSimulation places the model's nodes on the initial circle.
func NewSimulation(m *graph.Model, width, height float64, p Params) *Simulation {
	return &Simulation{
		model:  m,
		params: p,
		adj:    adjacency(m.Len(), m.Links()),
		state:  Place(m, width, height),
	}
}

// Advance runs up to n ticks without exceeding the budget and returns how
// many ran. Once settled it does nothing.
func (s *Simulation) Advance(n int) int {
	ran := 0
	for ran < n && !s.Settled() {
		step(s.state, s.adj, s.params)
		s.iterations++
		ran++
	}
	return ran
}

// Settled reports whether the iteration budget is spent.
func (s *Simulation) Settled() bool {
	return s.iterations >= s.params.MaxIterations
}

// Iterations returns the number of ticks run since the model was loaded.
func (s *Simulation) Iterations() int { return s.iterations }

// Model returns the model being laid out.
func (s *Simulation) Model() *graph.Model { return s.model }

// State returns the live state. Callers must not keep it past the current
// frame.
func (s *Simulation) State() *State { return s.state }

// Resize maps the current arrangement onto a new viewport: positions are
// scaled proportionally and clamped to the new bounds. The iteration budget
// is not reset.
func (s *Simulation) Resize(width, height float64) {
	old := s.state
	if old.Width == width && old.Height == height {
		return
	}
	sx, sy := 1.0, 1.0
	if old.Width > 0 {
		sx = width / old.Width
	}
	if old.Height > 0 {
		sy = height / old.Height
	}
	for i := range old.Bodies {
		b := &old.Bodies[i]
		b.X = clamp(b.X*sx, s.params.Padding, width-s.params.Padding)
		b.Y = clamp(b.Y*sy, s.params.Padding, height-s.params.Padding)
		if math.IsNaN(b.X) || math.IsNaN(b.Y) {
			b.X, b.Y = width/2, height/2
		}
	}
	old.Width, old.Height = width, height
}
