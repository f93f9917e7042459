package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

const eps = 1e-9

func scenarioModel(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.New("paper-1",
		[]graph.Node{
			{ID: "a", Label: "Neural Networks", Size: 5, Type: "concept"},
			{ID: "b", Label: "Gradient Descent", Size: 3, Type: "concept"},
		},
		[]graph.Edge{{Source: "a", Target: "b", Weight: 0.8}})
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return m
}

func ringModel(t *testing.T, n int) *graph.Model {
	t.Helper()
	nodes := make([]graph.Node, n)
	edges := make([]graph.Edge, 0, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("Concept %d", i), Size: float64(i % 12)}
	}
	for i := 0; i < n; i++ {
		edges = append(edges, graph.Edge{
			Source: nodes[i].ID,
			Target: nodes[(i+1)%n].ID,
			Weight: float64(1 + i%3),
		})
	}
	m, err := graph.New("ring", nodes, edges)
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return m
}

func TestRadius(t *testing.T) {
	tests := []struct {
		size float64
		want float64
	}{
		{0, 8},
		{3, 8},
		{4, 8},
		{5, 10},
		{9.5, 19},
		{10, 20},
		{100, 20},
	}
	for _, tt := range tests {
		if got := Radius(tt.size); got != tt.want {
			t.Errorf("Radius(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestPlaceScenario(t *testing.T) {
	s := Place(scenarioModel(t), 400, 300)

	a, b := s.Bodies[0], s.Bodies[1]
	if math.Abs(a.X-290) > eps || math.Abs(a.Y-150) > eps {
		t.Errorf("expected a at (290,150), got (%v,%v)", a.X, a.Y)
	}
	if math.Abs(b.X-110) > eps || math.Abs(b.Y-150) > eps {
		t.Errorf("expected b at (110,150), got (%v,%v)", b.X, b.Y)
	}
	if a.Radius != 10 || b.Radius != 8 {
		t.Errorf("expected radii 10 and 8, got %v and %v", a.Radius, b.Radius)
	}
	if a.VX != 0 || a.VY != 0 || b.VX != 0 || b.VY != 0 {
		t.Error("expected zero initial velocity")
	}
}

func TestPlaceOnCircle(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 20, 64} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			w, h := 640.0, 480.0
			s := Place(ringModel(t, n), w, h)
			r := math.Min(w, h) * 0.3

			seen := make(map[[2]int64]bool)
			for i, b := range s.Bodies {
				d := math.Hypot(b.X-w/2, b.Y-h/2)
				if math.Abs(d-r) > 1e-6 {
					t.Errorf("node %d at distance %v, want %v", i, d, r)
				}
				key := [2]int64{int64(math.Round(b.X * 1e6)), int64(math.Round(b.Y * 1e6))}
				if seen[key] {
					t.Errorf("node %d shares a position with another node", i)
				}
				seen[key] = true
			}
		})
	}
}

func TestPlaceEmpty(t *testing.T) {
	s := Place(graph.Empty("p"), 400, 300)
	if len(s.Bodies) != 0 {
		t.Errorf("expected no bodies, got %d", len(s.Bodies))
	}
	Step(s, nil, DefaultParams())
}

func TestStepScenarioFirstTick(t *testing.T) {
	m := scenarioModel(t)
	s := Place(m, 400, 300)
	p := DefaultParams()

	Step(s, m.Links(), p)

	// a: repulsion 1000/180² away from b, attraction 0.01·0.8·(-180),
	// gravity 0.001·(-90). All along x.
	fa := 1000.0/(180*180) + 0.01*0.8*(-180) + 0.001*(-90)
	wantVX := fa * p.Alpha
	wantX := 290 + wantVX*p.Alpha
	if math.Abs(s.Bodies[0].X-wantX) > 1e-9 {
		t.Errorf("a.X = %v, want %v", s.Bodies[0].X, wantX)
	}
	if math.Abs(s.Bodies[0].VX-wantVX*p.Damping) > 1e-9 {
		t.Errorf("a.VX = %v, want %v", s.Bodies[0].VX, wantVX*p.Damping)
	}
	if s.Bodies[0].Y != 150 {
		t.Errorf("a.Y should stay on the axis, got %v", s.Bodies[0].Y)
	}

	// b reads a's already-updated position.
	dx := s.Bodies[0].X - 110
	fb := -1000.0/(dx*dx) + 0.01*0.8*dx + 0.001*90
	wantBX := 110 + fb*p.Alpha*p.Alpha
	if math.Abs(s.Bodies[1].X-wantBX) > 1e-9 {
		t.Errorf("b.X = %v, want %v", s.Bodies[1].X, wantBX)
	}
}

func TestStepUndirectedAttraction(t *testing.T) {
	nodes := []graph.Node{{ID: "a"}, {ID: "b"}}
	forward, _ := graph.New("p", nodes, []graph.Edge{{Source: "a", Target: "b", Weight: 1}})
	reverse, _ := graph.New("p", nodes, []graph.Edge{{Source: "b", Target: "a", Weight: 1}})

	s1 := Place(forward, 400, 300)
	s2 := Place(reverse, 400, 300)
	Step(s1, forward.Links(), DefaultParams())
	Step(s2, reverse.Links(), DefaultParams())

	for i := range s1.Bodies {
		if s1.Bodies[i] != s2.Bodies[i] {
			t.Errorf("body %d differs by edge orientation: %+v vs %+v", i, s1.Bodies[i], s2.Bodies[i])
		}
	}
}

func TestStepCoincidentNodes(t *testing.T) {
	s := &State{Width: 400, Height: 300, Bodies: []Body{
		{X: 200, Y: 150, Radius: 8},
		{X: 200, Y: 150, Radius: 8},
	}}
	Step(s, nil, DefaultParams())
	for i, b := range s.Bodies {
		if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
			t.Fatalf("body %d blew up: %+v", i, b)
		}
	}
}

func TestBoundaryContainment(t *testing.T) {
	sizes := [][2]float64{{400, 300}, {120, 120}, {1920, 1080}, {80, 600}}
	for _, sz := range sizes {
		t.Run(fmt.Sprintf("%vx%v", sz[0], sz[1]), func(t *testing.T) {
			p := DefaultParams()
			p.RepelStrength = 50000 // push hard toward the walls
			sim := NewSimulation(ringModel(t, 30), sz[0], sz[1], p)

			for tick := 0; tick < p.MaxIterations; tick++ {
				sim.Advance(1)
				for i, b := range sim.State().Bodies {
					lo, hiX, hiY := p.Padding, sz[0]-p.Padding, sz[1]-p.Padding
					if hiX < lo {
						lo, hiX = sz[0]/2, sz[0]/2
					}
					okX := b.X >= lo-eps && b.X <= hiX+eps
					lo = p.Padding
					if hiY < lo {
						lo, hiY = sz[1]/2, sz[1]/2
					}
					okY := b.Y >= lo-eps && b.Y <= hiY+eps
					if !okX || !okY {
						t.Fatalf("tick %d: node %d escaped to (%v,%v)", tick, i, b.X, b.Y)
					}
				}
			}
		})
	}
}

func TestSimulationBudget(t *testing.T) {
	p := DefaultParams()
	p.MaxIterations = 25
	sim := NewSimulation(ringModel(t, 8), 400, 300, p)

	if ran := sim.Advance(10); ran != 10 {
		t.Errorf("expected 10 ticks, got %d", ran)
	}
	if ran := sim.Advance(100); ran != 15 {
		t.Errorf("expected 15 ticks up to the budget, got %d", ran)
	}
	if !sim.Settled() {
		t.Fatal("expected simulation to be settled")
	}

	before := sim.State().Clone()
	for i := 0; i < 50; i++ {
		if ran := sim.Advance(1); ran != 0 {
			t.Fatalf("expected no ticks after settlement, got %d", ran)
		}
	}
	for i := range before.Bodies {
		if before.Bodies[i] != sim.State().Bodies[i] {
			t.Errorf("body %d moved after settlement", i)
		}
	}
	if sim.Iterations() != 25 {
		t.Errorf("expected 25 iterations, got %d", sim.Iterations())
	}
}

func TestSimulationDeterministic(t *testing.T) {
	m := ringModel(t, 12)
	a := NewSimulation(m, 500, 400, DefaultParams())
	b := NewSimulation(m, 500, 400, DefaultParams())
	a.Advance(300)
	b.Advance(300)
	for i := range a.State().Bodies {
		if a.State().Bodies[i] != b.State().Bodies[i] {
			t.Fatalf("body %d differs between identical runs", i)
		}
	}
}

func TestSimulationResize(t *testing.T) {
	p := DefaultParams()
	sim := NewSimulation(scenarioModel(t), 400, 300, p)
	sim.Advance(p.MaxIterations)

	sim.Resize(200, 150)
	st := sim.State()
	if st.Width != 200 || st.Height != 150 {
		t.Errorf("expected 200x150, got %vx%v", st.Width, st.Height)
	}
	for i, b := range st.Bodies {
		if b.X < p.Padding || b.X > 200-p.Padding || b.Y < p.Padding || b.Y > 150-p.Padding {
			t.Errorf("node %d outside resized bounds: (%v,%v)", i, b.X, b.Y)
		}
	}
	if sim.Iterations() != p.MaxIterations {
		t.Error("resize should not reset the iteration budget")
	}
}

func TestClampInvertedRange(t *testing.T) {
	if got := clamp(10, 50, 30); got != 40 {
		t.Errorf("clamp(10, 50, 30) = %v, want 40", got)
	}
	if got := clamp(10, 50, 350); got != 50 {
		t.Errorf("clamp(10, 50, 350) = %v, want 50", got)
	}
}
