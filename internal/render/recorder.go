package render

import (
	"image/color"
	"sync"
)

// Op is one recorded surface call.
type Op struct {
	Kind  string // "clear", "line", "circle", "text", ...
	X, Y  float64
	X2    float64
	Y2    float64
	R     float64
	Text  string
	Width float64
	Color color.Color
}

// Recorder is a Surface that keeps the primitives of the last frame instead
// of drawing them. Paths are collapsed into lines and circles. It is safe
// for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	width   int
	height  int
	sx, sy  float64
	stroke  color.Color
	fill    color.Color
	font    float64
	path    []Op
	ops     []Op
	cursorX float64
	cursorY float64
	frames  int
}

var _ Surface = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{sx: 1, sy: 1}
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.sx, r.sy = 1, 1
}

func (r *Recorder) Scale(sx, sy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sx *= sx
	r.sy *= sy
}

// ClearRect drops the previous frame's primitives and starts a new frame.
func (r *Recorder) ClearRect(x, y, w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = r.ops[:0]
	r.ops = append(r.ops, Op{Kind: "clear", X: x, Y: y, X2: x + w, Y2: y + h})
	r.frames++
}

func (r *Recorder) SetStrokeColor(c color.Color) {
	r.mu.Lock()
	r.stroke = c
	r.mu.Unlock()
}

func (r *Recorder) SetFillColor(c color.Color) {
	r.mu.Lock()
	r.fill = c
	r.mu.Unlock()
}

func (r *Recorder) SetLineWidth(float64) {}

func (r *Recorder) BeginPath() {
	r.mu.Lock()
	r.path = r.path[:0]
	r.mu.Unlock()
}

func (r *Recorder) MoveTo(x, y float64) {
	r.mu.Lock()
	r.cursorX, r.cursorY = x, y
	r.mu.Unlock()
}

func (r *Recorder) LineTo(x, y float64) {
	r.mu.Lock()
	r.path = append(r.path, Op{Kind: "line", X: r.cursorX, Y: r.cursorY, X2: x, Y2: y})
	r.cursorX, r.cursorY = x, y
	r.mu.Unlock()
}

func (r *Recorder) Arc(x, y, radius, start, end float64) {
	r.mu.Lock()
	r.path = append(r.path, Op{Kind: "circle", X: x, Y: y, R: radius})
	r.mu.Unlock()
}

// Stroke records the current path. A circle that was just filled is not
// recorded twice.
func (r *Recorder) Stroke() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.path {
		if op.Kind == "circle" && r.lastIs(op) {
			continue
		}
		op.Color = r.stroke
		r.ops = append(r.ops, op)
	}
}

func (r *Recorder) Fill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.path {
		op.Color = r.fill
		r.ops = append(r.ops, op)
	}
}

func (r *Recorder) lastIs(op Op) bool {
	if len(r.ops) == 0 {
		return false
	}
	last := r.ops[len(r.ops)-1]
	return last.Kind == op.Kind && last.X == op.X && last.Y == op.Y && last.R == op.R
}

func (r *Recorder) SetFontSize(size float64) {
	r.mu.Lock()
	r.font = size
	r.mu.Unlock()
}

func (r *Recorder) SetTextAlign(TextAlign) {}
func (r *Recorder) SetTextBaseline(TextBaseline) {}

func (r *Recorder) FillText(s string, x, y, maxWidth float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: "text", X: x, Y: y, Text: s, Width: maxWidth, R: r.font, Color: r.fill})
}

// Ops returns a copy of the primitives drawn since the last full clear.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OpsOf returns the recorded primitives of one kind.
func (r *Recorder) OpsOf(kind string) []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Frames returns how many frames were started.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Size returns the backing store size and the current scale.
func (r *Recorder) Size() (width, height int, sx, sy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height, r.sx, r.sy
}
