// Package render draws a laid-out concept graph onto a 2D surface.
package render

import (
	"image/color"
	"math"
)

// TextAlign is the horizontal anchor of FillText.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// TextBaseline is the vertical anchor of FillText.
type TextBaseline int

const (
	BaselineTop TextBaseline = iota
	BaselineMiddle
	BaselineAlphabetic
)

// Surface is the drawing context a renderer needs. Coordinates are in the
// units established by Scale; after Resize the transform is the identity.
type Surface interface {
	// Resize sets the backing store size in device pixels.
	Resize(width, height int)
	Scale(sx, sy float64)

	ClearRect(x, y, w, h float64)

	SetStrokeColor(c color.Color)
	SetFillColor(c color.Color)
	SetLineWidth(w float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, r, start, end float64)
	Stroke()
	Fill()

	SetFontSize(size float64)
	SetTextAlign(a TextAlign)
	SetTextBaseline(b TextBaseline)
	// FillText draws s anchored at (x, y). Text wider than maxWidth is
	// condensed horizontally to fit; maxWidth <= 0 means unbounded.
	FillText(s string, x, y, maxWidth float64)
}

// Viewport is the logical size of the drawing area and its device pixel
// ratio.
type Viewport struct {
	Width      float64
	Height     float64
	PixelRatio float64
}

// Ratio returns the pixel ratio, defaulting to 1.
func (v Viewport) Ratio() float64 {
	if v.PixelRatio <= 0 {
		return 1
	}
	return v.PixelRatio
}

// Backing returns the backing store size in device pixels.
func (v Viewport) Backing() (int, int) {
	r := v.Ratio()
	return int(math.Round(v.Width * r)), int(math.Round(v.Height * r))
}

// Valid reports whether the viewport has a drawable area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}
