package render

import (
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Terminal cell size in device pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	r   rune
	hex string
	pri int // higher wins: edge < node < text
}

const (
	priEdge = iota + 1
	priNode
	priText
)

// Terminal is a Surface that rasterises onto a grid of terminal cells. It
// is safe for concurrent use so a UI can read String while frames draw.
//
// FillText ignores maxWidth: a cell is much coarser than the circle it
// labels, so labels overflow their node instead of being cut to a stub.
type Terminal struct {
	mu       sync.Mutex
	cols     int
	rows     int
	sx, sy   float64
	grid     [][]cell
	path     []Op
	cursorX  float64
	cursorY  float64
	stroke   color.Color
	fill     color.Color
	align    TextAlign
	baseline TextBaseline
}

var _ Surface = (*Terminal)(nil)

// NewTerminal returns an empty terminal surface.
func NewTerminal() *Terminal {
	return &Terminal{sx: 1, sy: 1, stroke: color.White, fill: color.White}
}

// TerminalViewport is the logical viewport covering cols x rows cells.
func TerminalViewport(cols, rows int) Viewport {
	return Viewport{Width: float64(cols * CellWidth), Height: float64(rows * CellHeight), PixelRatio: 1}
}

func (t *Terminal) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols = max(width/CellWidth, 0)
	t.rows = max(height/CellHeight, 0)
	t.sx, t.sy = 1, 1
	t.grid = make([][]cell, t.rows)
	for i := range t.grid {
		t.grid[i] = make([]cell, t.cols)
	}
}

func (t *Terminal) Scale(sx, sy float64) {
	t.mu.Lock()
	t.sx *= sx
	t.sy *= sy
	t.mu.Unlock()
}

func (t *Terminal) ClearRect(x, y, w, h float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c0, r0 := t.cellAt(x, y)
	c1, r1 := t.cellAt(x+w, y+h)
	for r := max(r0, 0); r <= min(r1, t.rows-1); r++ {
		for c := max(c0, 0); c <= min(c1, t.cols-1); c++ {
			t.grid[r][c] = cell{}
		}
	}
}

func (t *Terminal) SetStrokeColor(c color.Color) {
	t.mu.Lock()
	t.stroke = c
	t.mu.Unlock()
}

func (t *Terminal) SetFillColor(c color.Color) {
	t.mu.Lock()
	t.fill = c
	t.mu.Unlock()
}

func (t *Terminal) SetLineWidth(float64) {}

func (t *Terminal) BeginPath() {
	t.mu.Lock()
	t.path = t.path[:0]
	t.mu.Unlock()
}

func (t *Terminal) MoveTo(x, y float64) {
	t.mu.Lock()
	t.cursorX, t.cursorY = x, y
	t.mu.Unlock()
}

func (t *Terminal) LineTo(x, y float64) {
	t.mu.Lock()
	t.path = append(t.path, Op{Kind: "line", X: t.cursorX, Y: t.cursorY, X2: x, Y2: y})
	t.cursorX, t.cursorY = x, y
	t.mu.Unlock()
}

func (t *Terminal) Arc(x, y, r, start, end float64) {
	t.mu.Lock()
	t.path = append(t.path, Op{Kind: "circle", X: x, Y: y, R: r})
	t.mu.Unlock()
}

// Stroke draws lines; circle outlines are too thin to show in cells.
func (t *Terminal) Stroke() {
	t.mu.Lock()
	defer t.mu.Unlock()
	hex := hexColor(t.stroke)
	for _, op := range t.path {
		if op.Kind == "line" {
			t.line(op.X, op.Y, op.X2, op.Y2, hex)
		}
	}
}

func (t *Terminal) Fill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	hex := hexColor(t.fill)
	for _, op := range t.path {
		if op.Kind == "circle" {
			t.disc(op.X, op.Y, op.R, hex)
		}
	}
}

func (t *Terminal) SetFontSize(float64) {}

func (t *Terminal) SetTextAlign(a TextAlign) {
	t.mu.Lock()
	t.align = a
	t.mu.Unlock()
}

func (t *Terminal) SetTextBaseline(b TextBaseline) {
	t.mu.Lock()
	t.baseline = b
	t.mu.Unlock()
}

func (t *Terminal) FillText(s string, x, y, maxWidth float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	runes := []rune(s)
	c, r := t.cellAt(x, y)
	switch t.align {
	case AlignCenter:
		c -= len(runes) / 2
	case AlignRight:
		c -= len(runes)
	}
	hex := hexColor(t.fill)
	for i, ch := range runes {
		t.set(c+i, r, ch, hex, priText)
	}
}

// String renders the grid with lipgloss colours, one line per row.
func (t *Terminal) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sb strings.Builder
	for r, row := range t.grid {
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && row[c].hex == row[start].hex {
				continue
			}
			sb.WriteString(styleRun(row[start:c]))
			start = c
		}
		if r < len(t.grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Plain renders the grid without colours.
func (t *Terminal) Plain() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]string, len(t.grid))
	for r, row := range t.grid {
		lines[r] = plainRun(row)
	}
	return strings.Join(lines, "\n")
}

func styleRun(run []cell) string {
	text := plainRun(run)
	if len(run) == 0 || run[0].hex == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(run[0].hex)).Render(text)
}

func plainRun(run []cell) string {
	b := make([]rune, len(run))
	for i, c := range run {
		if c.r == 0 {
			b[i] = ' '
		} else {
			b[i] = c.r
		}
	}
	return string(b)
}

func (t *Terminal) cellAt(x, y float64) (int, int) {
	return int(math.Floor(x * t.sx / CellWidth)), int(math.Floor(y * t.sy / CellHeight))
}

func (t *Terminal) set(c, r int, ch rune, hex string, pri int) {
	if r < 0 || r >= t.rows || c < 0 || c >= t.cols {
		return
	}
	if t.grid[r][c].pri > pri {
		return
	}
	t.grid[r][c] = cell{r: ch, hex: hex, pri: pri}
}

func (t *Terminal) line(x0, y0, x1, y1 float64, hex string) {
	c0, r0 := t.cellAt(x0, y0)
	c1, r1 := t.cellAt(x1, y1)
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		t.set(c0, r0, '·', hex, priEdge)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		c := c0 + int(math.Round(f*float64(c1-c0)))
		r := r0 + int(math.Round(f*float64(r1-r0)))
		t.set(c, r, '·', hex, priEdge)
	}
}

func (t *Terminal) disc(x, y, radius float64, hex string) {
	cx, cy := x*t.sx, y*t.sy
	rad := radius * t.sx
	c0, r0 := int(math.Floor((cx-rad)/CellWidth)), int(math.Floor((cy-rad)/CellHeight))
	c1, r1 := int(math.Floor((cx+rad)/CellWidth)), int(math.Floor((cy+rad)/CellHeight))
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			px := (float64(c) + 0.5) * CellWidth
			py := (float64(r) + 0.5) * CellHeight
			if math.Hypot(px-cx, py-cy) <= rad {
				t.set(c, r, '●', hex, priNode)
			}
		}
	}
	cc, cr := t.cellAt(x, y)
	t.set(cc, cr, '●', hex, priNode)
}

func hexColor(c color.Color) string {
	if c == nil {
		return ""
	}
	return cssColor(c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
