// Package theme holds the fixed set of colour palettes the player cycles through.
package theme

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync/atomic"
)

// Palette is an immutable colour triple.
type Palette struct {
	Name      string
	Primary   color.RGBA
	Secondary color.RGBA
	Accent    color.RGBA
}

// Role names a styling slot that a palette colour is pushed into.
type Role int

const (
	RolePrimary Role = iota
	RoleSecondary
	RoleAccent
	RoleGlow
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	case RoleAccent:
		return "accent"
	case RoleGlow:
		return "glow"
	default:
		return "unknown"
	}
}

// Styler receives palette colours for the UI chrome around the visualizer.
type Styler interface {
	SetColor(role Role, c color.RGBA)
}

// StylerFunc adapts a function to Styler.
type StylerFunc func(role Role, c color.RGBA)

func (f StylerFunc) SetColor(role Role, c color.RGBA) { f(role, c) }

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("theme: invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("theme: invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultPalettes returns the built-in palettes in cycle order.
func DefaultPalettes() []Palette {
	return []Palette{
		{Name: "Ocean", Primary: mustHex("#00d4ff"), Secondary: mustHex("#0099cc"), Accent: mustHex("#667eea")},
		{Name: "Sunset", Primary: mustHex("#ff6b6b"), Secondary: mustHex("#ee5a24"), Accent: mustHex("#764ba2")},
		{Name: "Mint", Primary: mustHex("#a8e6cf"), Secondary: mustHex("#ffd3a5"), Accent: mustHex("#667eea")},
	}
}

// Store is an ordered palette list with a current index. The index may be
// read from the render path while the UI advances it.
type Store struct {
	palettes []Palette
	index    atomic.Int32
	styler   Styler
}

// NewStore copies palettes; an empty list falls back to DefaultPalettes.
// styler may be nil.
func NewStore(palettes []Palette, styler Styler) *Store {
	if len(palettes) == 0 {
		palettes = DefaultPalettes()
	}
	return &Store{
		palettes: append([]Palette(nil), palettes...),
		styler:   styler,
	}
}

func (s *Store) Len() int   { return len(s.palettes) }
func (s *Store) Index() int { return int(s.index.Load()) }

func (s *Store) Current() Palette {
	return s.palettes[s.Index()]
}

// SetStyler replaces the styling target and pushes the current palette to it.
func (s *Store) SetStyler(styler Styler) {
	s.styler = styler
	s.Apply()
}

// Select jumps to index i modulo Len and applies it.
func (s *Store) Select(i int) Palette {
	n := len(s.palettes)
	s.index.Store(int32(((i % n) + n) % n))
	s.Apply()
	return s.Current()
}

// Next advances one palette, wrapping from the last to the first.
func (s *Store) Next() Palette {
	return s.Select(s.Index() + 1)
}

// Apply pushes the current palette to the styler.
func (s *Store) Apply() {
	if s.styler == nil {
		return
	}
	p := s.Current()
	s.styler.SetColor(RolePrimary, p.Primary)
	s.styler.SetColor(RoleSecondary, p.Secondary)
	s.styler.SetColor(RoleAccent, p.Accent)
	s.styler.SetColor(RoleGlow, p.Primary)
}
