package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// scopeSurface paints the visualizer onto a persistent offscreen image.
type scopeSurface struct {
	img *ebiten.Image
	vs  []ebiten.Vertex
}

func (s *scopeSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *scopeSurface) FillRect(x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), c, false)
}

// FillVerticalGradient draws a quad whose top edge is top and bottom edge is
// bottom. The GPU interpolates the vertex colours in between.
func (s *scopeSurface) FillVerticalGradient(x, y, w, h float64, top, bottom color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	tr, tg, tb, ta := colorFloats(top)
	br, bg, bb, ba := colorFloats(bottom)
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)
	s.vs = append(s.vs[:0],
		ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 1, SrcY: 1, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		ebiten.Vertex{DstX: x1, DstY: y0, SrcX: 1, SrcY: 1, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 1, SrcY: 1, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
		ebiten.Vertex{DstX: x1, DstY: y1, SrcX: 1, SrcY: 1, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
	)
	s.img.DrawTriangles(s.vs, []uint16{0, 1, 2, 1, 3, 2}, whiteSubImage, &ebiten.DrawTrianglesOptions{})
}

// colorFloats returns straight-alpha components in 0..1.
func colorFloats(c color.Color) (r, g, b, a float32) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float32(n.R) / 255, float32(n.G) / 255, float32(n.B) / 255, float32(n.A) / 255
}
