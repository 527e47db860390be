package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale
)

var (
	bgColor       = color.RGBA{192, 192, 192, 255}
	panelColor    = color.RGBA{192, 192, 192, 255}
	borderColor   = color.RGBA{128, 128, 128, 255}
	bevelLight    = color.RGBA{255, 255, 255, 255}
	bevelDarker   = color.RGBA{64, 64, 64, 255}
	sunkenBgColor = color.RGBA{24, 24, 32, 255}
	scopeBgColor  = color.RGBA{15, 15, 35, 255}
)

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

func fill(dst *ebiten.Image, x, y, w, h int, c color.Color) {
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), float32(h), c, false)
}

// bevel draws a 3D border. Raised bevels are lit on the top and left,
// sunken ones on the bottom and right.
func bevel(dst *ebiten.Image, r image.Rectangle, raised bool) {
	x, y, w, h := r.Min.X, r.Min.Y, r.Dx(), r.Dy()
	lit, shade, inner := bevelLight, borderColor, borderColor
	if raised {
		shade = bevelDarker
	} else {
		lit, shade, inner = borderColor, bevelLight, bevelDarker
	}
	fill(dst, x, y, w-1, 1, lit)
	fill(dst, x, y+1, 1, h-2, lit)
	fill(dst, x, y+h-1, w, 1, shade)
	fill(dst, x+w-1, y, 1, h, shade)
	if raised {
		fill(dst, x+1, y+h-2, w-3, 1, inner)
		fill(dst, x+w-2, y+1, 1, h-3, inner)
		return
	}
	fill(dst, x+1, y+1, w-3, 1, inner)
	fill(dst, x+1, y+2, 1, h-4, inner)
}

func drawPanel(dst *ebiten.Image, r image.Rectangle) {
	fillRect(dst, r, panelColor)
	bevel(dst, r, true)
}

func drawSunkenPanel(dst *ebiten.Image, r image.Rectangle) {
	fillRect(dst, r, sunkenBgColor)
	bevel(dst, r, false)
}

// drawSlider draws a horizontal groove with a fill up to frac and a knob.
func drawSlider(dst *ebiten.Image, track image.Rectangle, frac float64, fillColor color.Color) {
	frac = clamp(frac, 0, 1)
	fillRect(dst, track, bevelDarker)
	fill(dst, track.Min.X, track.Min.Y, track.Dx()-1, 1, borderColor)
	fill(dst, track.Min.X, track.Min.Y, 1, track.Dy()-1, borderColor)
	fillW := int(float64(track.Dx()) * frac)
	if fillW > 2 {
		fill(dst, track.Min.X+1, track.Min.Y+1, fillW-1, track.Dy()-2, fillColor)
	}
	knobX := min(max(track.Min.X+fillW-5, track.Min.X-5), track.Max.X-5)
	knob := image.Rect(knobX, track.Min.Y-4, knobX+10, track.Max.Y+4)
	fillRect(dst, knob, panelColor)
	bevel(dst, knob, true)
}

// textRenderer caches debug-font glyph images per string.
type textRenderer struct {
	cache map[string]*ebiten.Image
}

func newTextRenderer() *textRenderer {
	return &textRenderer{cache: make(map[string]*ebiten.Image, 256)}
}

func (t *textRenderer) draw(dst *ebiten.Image, msg string, x, y int, c color.Color) {
	if msg == "" {
		return
	}
	img := t.cache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len([]rune(msg))*7), 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(t.cache) > 2000 {
			clear(t.cache)
		}
		t.cache[msg] = img
	}
	shadow := &ebiten.DrawImageOptions{}
	shadow.GeoM.Scale(textScale, textScale)
	shadow.GeoM.Translate(float64(x+2), float64(y+2))
	shadow.ColorScale.Scale(0, 0, 0, 1)
	dst.DrawImage(img, shadow)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(img, op)
}

func (t *textRenderer) button(dst *ebiten.Image, r image.Rectangle, label string, c color.Color) {
	drawPanel(dst, r)
	w := len([]rune(label)) * charW
	t.draw(dst, label, r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-lineH)/2, c)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func shortenMiddle(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 7 {
		return shortenEnd(s, maxChars)
	}
	left := (maxChars - 3) / 2
	right := maxChars - 3 - left
	return string(r[:left]) + "..." + string(r[len(r)-right:])
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func pointInRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}
