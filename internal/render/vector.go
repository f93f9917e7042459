package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

// Vector is a Surface that produces an SVG document of the last frame.
// The document is width*ratio by height*ratio device pixels with a logical
// viewBox, so Scale only changes the outer size, not the coordinates.
type Vector struct {
	Background color.Color

	width, height int
	sx, sy        float64
	body          bytes.Buffer
	canvas        *svg.SVG
	path          strings.Builder
	stroke        color.Color
	fill          color.Color
	lineWidth     float64
	fontSize      float64
	align         TextAlign
	baseline      TextBaseline
}

var _ Surface = (*Vector)(nil)

// NewVector returns an empty vector surface.
func NewVector() *Vector {
	v := &Vector{
		Background: DefaultBackground,
		sx:         1,
		sy:         1,
		stroke:     color.Black,
		fill:       color.Black,
		lineWidth:  1,
		fontSize:   10,
	}
	v.canvas = svg.New(&v.body)
	return v
}

func (v *Vector) Resize(width, height int) {
	v.width, v.height = width, height
	v.sx, v.sy = 1, 1
	v.body.Reset()
}

func (v *Vector) Scale(sx, sy float64) {
	v.sx *= sx
	v.sy *= sy
}

// ClearRect drops everything drawn so far and paints the background.
func (v *Vector) ClearRect(x, y, w, h float64) {
	v.body.Reset()
	if v.Background == nil {
		return
	}
	v.canvas.Rect(x, y, w, h, "fill:"+cssColor(v.Background)+opacity("fill-opacity", v.Background))
}

func (v *Vector) SetStrokeColor(c color.Color) { v.stroke = c }
func (v *Vector) SetFillColor(c color.Color) { v.fill = c }
func (v *Vector) SetLineWidth(w float64) { v.lineWidth = w }

func (v *Vector) BeginPath() { v.path.Reset() }

func (v *Vector) MoveTo(x, y float64) { v.pathCmd("M", x, y) }
func (v *Vector) LineTo(x, y float64) { v.pathCmd("L", x, y) }

// Arc appends a circular arc. Full turns are split in two half arcs since a
// single SVG arc cannot start and end on the same point.
func (v *Vector) Arc(x, y, r, start, end float64) {
	sweep := end - start
	if math.Abs(sweep) >= 2*math.Pi {
		v.pathCmd("M", x+r, y)
		v.arcTo(r, 1, 1, x-r, y)
		v.arcTo(r, 1, 1, x+r, y)
		v.path.WriteString("Z")
		return
	}
	large := 0
	if math.Abs(sweep) > math.Pi {
		large = 1
	}
	dir := 1
	if sweep < 0 {
		dir = 0
	}
	v.pathCmd("M", x+r*math.Cos(start), y+r*math.Sin(start))
	v.arcTo(r, large, dir, x+r*math.Cos(end), y+r*math.Sin(end))
}

// pathCmd appends cmd followed by a coordinate pair at the canvas precision.
func (v *Vector) pathCmd(cmd string, x, y float64) {
	d := v.canvas.Decimals
	fmt.Fprintf(&v.path, "%s%.*f,%.*f", cmd, d, x, d, y)
}

func (v *Vector) arcTo(r float64, large, dir int, x, y float64) {
	d := v.canvas.Decimals
	fmt.Fprintf(&v.path, "A%.*f,%.*f 0 %d %d ", d, r, d, r, large, dir)
	v.pathCmd("", x, y)
}

func (v *Vector) Stroke() {
	if v.path.Len() == 0 {
		return
	}
	v.canvas.Path(v.path.String(), fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.*f%s",
		cssColor(v.stroke), v.canvas.Decimals, v.lineWidth, opacity("stroke-opacity", v.stroke)))
}

func (v *Vector) Fill() {
	if v.path.Len() == 0 {
		return
	}
	v.canvas.Path(v.path.String(), "fill:"+cssColor(v.fill)+opacity("fill-opacity", v.fill))
}

func (v *Vector) SetFontSize(size float64) { v.fontSize = size }
func (v *Vector) SetTextAlign(a TextAlign) { v.align = a }
func (v *Vector) SetTextBaseline(b TextBaseline) { v.baseline = b }

// FillText emits a text element; maxWidth becomes textLength so viewers
// condense overlong labels the way a canvas does.
func (v *Vector) FillText(s string, x, y, maxWidth float64) {
	anchor := map[TextAlign]string{AlignLeft: "start", AlignCenter: "middle", AlignRight: "end"}[v.align]
	base := map[TextBaseline]string{BaselineTop: "hanging", BaselineMiddle: "central", BaselineAlphabetic: "alphabetic"}[v.baseline]

	d := v.canvas.Decimals
	attrs := []string{fmt.Sprintf("fill:%s%s;font-family:sans-serif;font-size:%.*fpx;text-anchor:%s;dominant-baseline:%s",
		cssColor(v.fill), opacity("fill-opacity", v.fill), d, v.fontSize, anchor, base)}
	if maxWidth > 0 && approxTextWidth(s, v.fontSize) > maxWidth {
		attrs = append(attrs, fmt.Sprintf(`textLength="%.*f" lengthAdjust="spacingAndGlyphs"`, d, maxWidth))
	}
	v.canvas.Text(x, y, s, attrs...)
}

// Encode writes the full SVG document.
func (v *Vector) Encode(w io.Writer) error {
	doc := svg.New(w)
	doc.Startview(float64(v.width), float64(v.height), 0, 0, float64(v.width)/v.sx, float64(v.height)/v.sy)
	if _, err := w.Write(v.body.Bytes()); err != nil {
		return err
	}
	doc.End()
	return nil
}

// approxTextWidth estimates the advance of s in a sans-serif face.
func approxTextWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * size * 0.55
}

func cssColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

func opacity(attr string, c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return ""
	}
	return fmt.Sprintf(";%s:%.2f", attr, float64(n.A)/255)
}
