package transport

import (
	"errors"
	"math"
	"testing"
)

type fakePlayback struct {
	paused   bool
	position float64
	duration float64
	volume   float64
	playErr  error
	seekErr  error
	seeks    []float64
}

func (f *fakePlayback) Paused() bool { return f.paused }
func (f *fakePlayback) Play() error {
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}
func (f *fakePlayback) Pause() { f.paused = true }
func (f *fakePlayback) Seek(s float64) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, s)
	f.position = s
	return nil
}
func (f *fakePlayback) Position() float64   { return f.position }
func (f *fakePlayback) Duration() float64   { return f.duration }
func (f *fakePlayback) SetVolume(v float64) { f.volume = v }
func (f *fakePlayback) Volume() float64     { return f.volume }

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{3599, "59:59"},
		{59.999, "00:59"},
		{125.4, "02:05"},
		{6000, "100:00"},
		{-1, "00:00"},
		{math.NaN(), "00:00"},
		{math.Inf(1), "00:00"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.in); got != tc.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTogglePlayPause(t *testing.T) {
	pb := &fakePlayback{paused: true}
	c := NewController(pb)
	if c.View().PlayLabel != LabelPlay {
		t.Fatalf("initial label = %q", c.View().PlayLabel)
	}
	if err := c.TogglePlayPause(); err != nil {
		t.Fatal(err)
	}
	if pb.paused || c.View().PlayLabel != LabelPause {
		t.Errorf("after play: paused=%v label=%q", pb.paused, c.View().PlayLabel)
	}
	c.TogglePlayPause()
	if !pb.paused || c.View().PlayLabel != LabelPlay {
		t.Errorf("after pause: paused=%v label=%q", pb.paused, c.View().PlayLabel)
	}
}

func TestTogglePlayFailureKeepsLabel(t *testing.T) {
	boom := errors.New("boom")
	pb := &fakePlayback{paused: true, playErr: boom}
	c := NewController(pb)
	if err := c.TogglePlayPause(); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if c.View().PlayLabel != LabelPlay {
		t.Errorf("label changed to %q on failed play", c.View().PlayLabel)
	}
}

func TestStopResetsFromAnyState(t *testing.T) {
	for _, startPaused := range []bool{true, false} {
		pb := &fakePlayback{paused: startPaused, position: 42}
		c := NewController(pb)
		if !startPaused {
			c.view.PlayLabel = LabelPause
		}
		c.TimeUpdate(42)
		if err := c.Stop(); err != nil {
			t.Fatal(err)
		}
		v := c.View()
		if !pb.paused || pb.position != 0 {
			t.Errorf("paused=%v: source not stopped (paused=%v pos=%v)", startPaused, pb.paused, pb.position)
		}
		if v.CurrentTime != "00:00" || v.PlayLabel != LabelPlay || v.ProgressValue != 0 {
			t.Errorf("paused=%v: view = %+v", startPaused, v)
		}
	}
}

func TestSetVolumeIsLinear(t *testing.T) {
	pb := &fakePlayback{}
	c := NewController(pb)
	for _, tc := range []struct{ in, want float64 }{{50, 0.5}, {0, 0}, {100, 1}, {25, 0.25}} {
		c.SetVolume(tc.in)
		if pb.volume != tc.want {
			t.Errorf("SetVolume(%v) -> %v, want %v", tc.in, pb.volume, tc.want)
		}
	}
}

func TestSeekForwardsValue(t *testing.T) {
	pb := &fakePlayback{}
	c := NewController(pb)
	c.Seek(12.5)
	if len(pb.seeks) != 1 || pb.seeks[0] != 12.5 {
		t.Errorf("seeks = %v", pb.seeks)
	}
}

func TestMetadataAndTimeUpdate(t *testing.T) {
	c := NewController(&fakePlayback{})
	c.TrackLoaded("Song")
	c.MetadataLoaded(125.4)
	c.TimeUpdate(65)
	v := c.View()
	if v.Title != "Song" || v.DurationLabel != "Duration: 02:05" || v.TotalTime != "02:05" {
		t.Errorf("labels = %+v", v)
	}
	if v.ProgressMax != 125.4 || v.ProgressValue != 65 || v.CurrentTime != "01:05" {
		t.Errorf("progress = %+v", v)
	}
}

func TestTrackLoadedResetsPlayState(t *testing.T) {
	pb := &fakePlayback{paused: true}
	c := NewController(pb)
	if err := c.TogglePlayPause(); err != nil {
		t.Fatal(err)
	}
	c.TimeUpdate(42)
	c.TrackLoaded("Next")
	v := c.View()
	if v.PlayLabel != LabelPlay || v.ProgressValue != 0 || v.CurrentTime != "00:00" {
		t.Errorf("view after new track = %+v", v)
	}
}

func TestSeekShowsLandingPosition(t *testing.T) {
	pb := &fakePlayback{paused: true}
	c := NewController(pb)
	c.MetadataLoaded(120)
	if err := c.Seek(30); err != nil {
		t.Fatal(err)
	}
	if err := c.Seek(c.View().ProgressValue + 5); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.ProgressValue != 35 || v.CurrentTime != "00:35" {
		t.Errorf("view after seeks = %+v", v)
	}

	pb.seekErr = errors.New("boom")
	if err := c.Seek(90); err == nil {
		t.Fatal("expected seek error")
	}
	if got := c.View().ProgressValue; got != 35 {
		t.Errorf("failed seek moved progress to %v", got)
	}
}
