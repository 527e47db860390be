package theme

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#00d4ff")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.RGBA{0x00, 0xd4, 0xff, 0xff}) {
		t.Errorf("ParseHex = %v", c)
	}
	for _, bad := range []string{"", "#fff", "#gg0000", "#1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) should fail", bad)
		}
	}
}

func TestNextCyclesBackToStart(t *testing.T) {
	s := NewStore(nil, nil)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if s.Index() != 0 {
		t.Fatalf("initial index = %d", s.Index())
	}
	seen := []string{s.Current().Name}
	for i := 0; i < s.Len(); i++ {
		seen = append(seen, s.Next().Name)
	}
	if s.Index() != 0 {
		t.Errorf("index after %d steps = %d, want 0", s.Len(), s.Index())
	}
	want := []string{"Ocean", "Sunset", "Mint", "Ocean"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestNextPushesColours(t *testing.T) {
	got := map[Role]color.RGBA{}
	s := NewStore(nil, StylerFunc(func(r Role, c color.RGBA) { got[r] = c }))
	s.Apply()
	if got[RolePrimary] != DefaultPalettes()[0].Primary {
		t.Fatalf("initial apply pushed %v", got[RolePrimary])
	}
	p := s.Next()
	if got[RolePrimary] != p.Primary || got[RoleSecondary] != p.Secondary || got[RoleAccent] != p.Accent {
		t.Errorf("styler = %v, palette = %+v", got, p)
	}
	if got[RoleGlow] != p.Primary {
		t.Errorf("glow = %v, want primary %v", got[RoleGlow], p.Primary)
	}
}

func TestSelectWraps(t *testing.T) {
	s := NewStore(nil, nil)
	if s.Select(5).Name != "Mint" {
		t.Errorf("Select(5) = %s", s.Current().Name)
	}
	if s.Select(-1).Name != "Mint" {
		t.Errorf("Select(-1) = %s", s.Current().Name)
	}
}
