package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
)

const (
	labelLimit    = 12
	labelKeep     = 10
	labelEllipsis = "..."
	labelMargin   = 4
)

// Theme holds the colours and sizes used for a frame.
type Theme struct {
	Edge        color.NRGBA
	EdgeWidth   float64
	NodeFill    color.NRGBA
	NodeBorder  color.NRGBA
	BorderWidth float64
	Label       color.NRGBA
	FontSize    float64
	Caption     color.NRGBA
}

// DefaultTheme matches the web client's palette.
func DefaultTheme() Theme {
	return Theme{
		Edge:        color.NRGBA{R: 150, G: 150, B: 150, A: 77},
		EdgeWidth:   1,
		NodeFill:    color.NRGBA{R: 99, G: 102, B: 241, A: 204},
		NodeBorder:  color.NRGBA{R: 255, G: 255, B: 255, A: 204},
		BorderWidth: 2,
		Label:       color.NRGBA{R: 255, G: 255, B: 255, A: 242},
		FontSize:    11,
		Caption:     color.NRGBA{R: 160, G: 160, B: 176, A: 255},
	}
}

// Renderer draws a model's layout state. It holds no per-frame state.
type Renderer struct {
	Theme Theme
	// Caption adds "N concepts, M connections" in the top-left corner.
	Caption bool
}

// NewRenderer returns a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// Configure sizes the backing store for vp and scales the context so that
// drawing happens in logical units. Call it whenever vp changes.
func (r *Renderer) Configure(s Surface, vp Viewport) {
	w, h := vp.Backing()
	s.Resize(w, h)
	s.Scale(vp.Ratio(), vp.Ratio())
}

// Draw renders one frame: edges, then node circles, then labels. A nil
// model or state only clears the surface.
func (r *Renderer) Draw(s Surface, vp Viewport, m *graph.Model, st *layout.State) {
	s.ClearRect(0, 0, vp.Width, vp.Height)
	if m == nil || st == nil || len(st.Bodies) != m.Len() {
		return
	}

	t := r.Theme
	bodies := st.Bodies

	s.SetStrokeColor(t.Edge)
	s.SetLineWidth(t.EdgeWidth)
	for _, e := range m.Edges() {
		i, okA := m.Index(e.Source)
		j, okB := m.Index(e.Target)
		if !okA || !okB {
			continue
		}
		s.BeginPath()
		s.MoveTo(bodies[i].X, bodies[i].Y)
		s.LineTo(bodies[j].X, bodies[j].Y)
		s.Stroke()
	}

	for i, b := range bodies {
		s.BeginPath()
		s.Arc(b.X, b.Y, b.Radius, 0, 2*math.Pi)
		s.SetFillColor(t.NodeFill)
		s.Fill()
		s.SetStrokeColor(t.NodeBorder)
		s.SetLineWidth(t.BorderWidth)
		s.Stroke()

		s.SetFillColor(t.Label)
		s.SetFontSize(t.FontSize)
		s.SetTextAlign(AlignCenter)
		s.SetTextBaseline(BaselineMiddle)
		s.FillText(TruncateLabel(m.Node(i).Label), b.X, b.Y, LabelWidth(b.Radius))
	}

	if r.Caption {
		stats := m.GetStats()
		s.SetFillColor(t.Caption)
		s.SetFontSize(t.FontSize)
		s.SetTextAlign(AlignLeft)
		s.SetTextBaseline(BaselineTop)
		s.FillText(fmt.Sprintf("%d concepts, %d connections", stats.Concepts, stats.Connections), 8, 8, 0)
	}
}

// TruncateLabel keeps labels of up to 12 characters and shortens longer
// ones to their first 10 characters plus "...".
func TruncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= labelLimit {
		return label
	}
	return string(runes[:labelKeep]) + labelEllipsis
}

// LabelWidth is the widest a label may be drawn inside a circle of radius r,
// in logical units.
func LabelWidth(radius float64) float64 {
	return radius*2 - labelMargin
}
