// Package visualizer draws frequency spectra as bars and runs the per-frame
// render loop.
package visualizer

import (
	"image/color"

	"github.com/cbegin/visplay-go/internal/theme"
)

const (
	// BarScale widens every bar past its share of the surface. The rightmost
	// bars end up beyond the visible edge and clip.
	BarScale = 2.5
	// BarGap is the fixed horizontal gap between bars.
	BarGap = 1.0
)

// TrailColor is painted over the whole surface each frame instead of a hard
// clear, so older frames fade out.
var TrailColor = color.NRGBA{R: 15, G: 15, B: 35, A: 26}

// Surface is a persistent drawing target.
type Surface interface {
	Size() (w, h int)
	FillRect(x, y, w, h float64, c color.Color)
	FillVerticalGradient(x, y, w, h float64, top, bottom color.Color)
}

// Bar is one rectangle in surface coordinates.
type Bar struct {
	X, Y, W, H float64
}

// BarWidth returns the width of each bar for a surface of the given width.
func BarWidth(surfaceWidth float64, bins int) float64 {
	if bins <= 0 {
		return 0
	}
	return surfaceWidth / float64(bins) * BarScale
}

// Layout computes one bar per bin, left to right, bottom-aligned.
func Layout(w, h float64, spectrum []byte) []Bar {
	bars := make([]Bar, len(spectrum))
	bw := BarWidth(w, len(spectrum))
	x := 0.0
	for i, v := range spectrum {
		bh := float64(v) / 255 * h
		bars[i] = Bar{X: x, Y: h - bh, W: bw, H: bh}
		x += bw + BarGap
	}
	return bars
}

// Paint fades the surface and draws spectrum with the palette's gradient.
func Paint(s Surface, spectrum []byte, p theme.Palette) {
	w, h := s.Size()
	s.FillRect(0, 0, float64(w), float64(h), TrailColor)
	for _, b := range Layout(float64(w), float64(h), spectrum) {
		s.FillVerticalGradient(b.X, b.Y, b.W, b.H, p.Primary, p.Secondary)
	}
}
