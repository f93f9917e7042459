package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultBackground is the raster clear colour.
var DefaultBackground = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

func loadRegular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// Raster is a Surface backed by an RGBA image.
//
// Glyphs are rasterised at device resolution: FillText picks a face sized
// fontSize times the current scale and draws it untransformed, so labels do
// not get upscaled bitmaps on high pixel-ratio viewports.
type Raster struct {
	Background color.Color

	dc        *gg.Context
	sx, sy    float64
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	fontSize  float64
	align     TextAlign
	baseline  TextBaseline
	faces     map[float64]font.Face
}

var _ Surface = (*Raster)(nil)

// NewRaster returns a 1x1 raster; call Resize (or Renderer.Configure)
// before drawing.
func NewRaster() *Raster {
	return &Raster{
		Background: DefaultBackground,
		dc:         gg.NewContext(1, 1),
		sx:         1,
		sy:         1,
		fill:       color.Black,
		stroke:     color.Black,
		lineWidth:  1,
		fontSize:   10,
		faces:      make(map[float64]font.Face),
	}
}

func (r *Raster) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.dc = gg.NewContext(width, height)
	r.sx, r.sy = 1, 1
}

func (r *Raster) Scale(sx, sy float64) {
	r.dc.Scale(sx, sy)
	r.sx *= sx
	r.sy *= sy
}

// ClearRect resets the rectangle to the background colour.
func (r *Raster) ClearRect(x, y, w, h float64) {
	dst, ok := r.dc.Image().(draw.Image)
	if !ok {
		return
	}
	x0, y0 := r.dc.TransformPoint(x, y)
	x1, y1 := r.dc.TransformPoint(x+w, y+h)
	rect := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	bg := r.Background
	if bg == nil {
		bg = color.Transparent
	}
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (r *Raster) SetStrokeColor(c color.Color) { r.stroke = c }
func (r *Raster) SetFillColor(c color.Color) { r.fill = c }
func (r *Raster) SetLineWidth(w float64) { r.lineWidth = w }

func (r *Raster) BeginPath() { r.dc.ClearPath() }
func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }

func (r *Raster) Arc(x, y, radius, start, end float64) {
	r.dc.NewSubPath()
	r.dc.DrawArc(x, y, radius, start, end)
}

// Stroke and Fill keep the current path, like a canvas context.
// gg strokes in device pixels, so the logical width is scaled here.
func (r *Raster) Stroke() {
	r.dc.SetLineWidth(r.lineWidth * math.Sqrt(math.Abs(r.sx*r.sy)))
	r.dc.SetColor(r.stroke)
	r.dc.StrokePreserve()
}

func (r *Raster) Fill() {
	r.dc.SetColor(r.fill)
	r.dc.FillPreserve()
}

func (r *Raster) SetFontSize(size float64) { r.fontSize = size }
func (r *Raster) SetTextAlign(a TextAlign) { r.align = a }
func (r *Raster) SetTextBaseline(b TextBaseline) { r.baseline = b }

func (r *Raster) FillText(s string, x, y, maxWidth float64) {
	face, err := r.face(r.fontSize * r.sy)
	if err != nil || s == "" {
		return
	}
	dx, dy := r.dc.TransformPoint(x, y)

	r.dc.Push()
	defer r.dc.Pop()
	r.dc.Identity()
	r.dc.SetFontFace(face)
	r.dc.SetColor(r.fill)

	if maxWidth > 0 {
		limit := maxWidth * r.sx
		if w, _ := r.dc.MeasureString(s); w > limit && w > 0 {
			r.dc.ScaleAbout(limit/w, 1, dx, dy)
		}
	}
	r.dc.DrawStringAnchored(s, dx, dy, anchorX(r.align), anchorY(r.baseline))
}

// face returns the Go Regular face at size device pixels.
func (r *Raster) face(size float64) (font.Face, error) {
	size = math.Round(size*4) / 4
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	ft, err := loadRegular()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %.2f: %w", size, err)
	}
	r.faces[size] = f
	return f, nil
}

// Image returns the backing image.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the backing image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func anchorX(a TextAlign) float64 {
	switch a {
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	default:
		return 0
	}
}

func anchorY(b TextBaseline) float64 {
	switch b {
	case BaselineTop:
		return 1
	case BaselineMiddle:
		return 0.5
	default:
		return 0
	}
}
