package media

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// writeWAV writes a mono 16-bit file of frames samples all set to value.
func writeWAV(t *testing.T, path string, rate, frames, value int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	enc := gowav.NewEncoder(f, rate, 16, 1, 1)
	data := make([]int, frames)
	for i := range data {
		data[i] = value
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func openFixture(t *testing.T, rate, frames, value int) *Track {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Test Tone.wav")
	writeWAV(t, path, rate, frames, value)
	tr, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestTitleFromPath(t *testing.T) {
	cases := map[string]string{
		"/music/My Song.mp3": "My Song",
		"archive.tar.gz":     "archive.tar",
		"noext":              "noext",
		"dir.v2/track.flac":  "track",
	}
	for in, want := range cases {
		if got := TitleFromPath(in); got != want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.mp3", "b.WAV", "c.flac", "d.ogg", "e.oga"} {
		if !Supported(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"a.mml", "b", "c.m4a"} {
		if Supported(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open("song.xyz"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unsupported extension: err = %v", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(bad, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bad); err == nil {
		t.Error("expected decode error for corrupt file")
	}
}

func TestOpenReadsDuration(t *testing.T) {
	tr := openFixture(t, 1000, 2500, 0)
	if tr.Title != "Test Tone" {
		t.Errorf("Title = %q", tr.Title)
	}
	if got := tr.Seconds(); got != 2.5 {
		t.Errorf("Seconds() = %v, want 2.5", got)
	}
	if tr.Len() != 2500 {
		t.Errorf("Len() = %d, want 2500", tr.Len())
	}
}

func TestSourceStartsPausedAndSilent(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 1000, 16384), 1000)
	if !src.Paused() {
		t.Fatal("new source should be paused")
	}
	buf := make([][2]float64, 100)
	src.Stream(buf)
	for i := range buf {
		if buf[i] != [2]float64{} {
			t.Fatalf("frame %d not silent while paused: %v", i, buf[i])
		}
	}
	if src.Position() != 0 {
		t.Errorf("paused source advanced to %v", src.Position())
	}
}

func TestSourceAppliesVolume(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 1000, 16384), 1000)
	if err := src.Play(); err != nil {
		t.Fatal(err)
	}
	full := make([][2]float64, 10)
	src.Stream(full)
	src.SetVolume(0.5)
	if src.Volume() != 0.5 {
		t.Fatalf("Volume() = %v", src.Volume())
	}
	half := make([][2]float64, 10)
	src.Stream(half)
	if full[0][0] < 0.4 || full[0][0] > 0.6 {
		t.Fatalf("unexpected decoded level %f", full[0][0])
	}
	if math.Abs(half[0][0]-full[0][0]*0.5) > 1e-9 {
		t.Errorf("half volume sample = %f, want %f", half[0][0], full[0][0]*0.5)
	}
	if got := src.Position(); got != 0.02 {
		t.Errorf("Position() = %v, want 0.02", got)
	}
}

func TestSourceSeekClamps(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 2000, 0), 1000)
	cases := []struct {
		in, want float64
	}{
		{1.5, 1.5},
		{-3, 0},
		{99, 2},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if err := src.Seek(tc.in); err != nil {
			t.Fatalf("Seek(%v): %v", tc.in, err)
		}
		if got := src.Position(); got != tc.want {
			t.Errorf("Seek(%v) -> Position() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSourceEndAndRestart(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 300, 1000), 1000)
	ended := 0
	var last float64
	src.OnEnded(func() { ended++ })
	src.OnTimeUpdate(func(s float64) { last = s })
	if err := src.Play(); err != nil {
		t.Fatal(err)
	}
	buf := make([][2]float64, 200)
	src.Stream(buf)
	src.Stream(buf)
	if !src.Ended() || !src.Paused() {
		t.Fatalf("source should be ended and paused (ended=%v paused=%v)", src.Ended(), src.Paused())
	}
	if ended != 1 {
		t.Errorf("ended callback fired %d times, want 1", ended)
	}
	if last != 0.3 {
		t.Errorf("last time update = %v, want 0.3", last)
	}
	src.Stream(buf)
	if ended != 1 {
		t.Errorf("ended fired again while stopped")
	}
	if err := src.Play(); err != nil {
		t.Fatal(err)
	}
	if src.Ended() || src.Position() != 0 {
		t.Errorf("Play after end should restart: ended=%v pos=%v", src.Ended(), src.Position())
	}
}

func TestSourceTimeUpdateInterval(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 5000, 0), 1000)
	var updates []float64
	src.OnTimeUpdate(func(s float64) { updates = append(updates, s) })
	src.Play()
	buf := make([][2]float64, 100)
	for i := 0; i < 10; i++ {
		src.Stream(buf)
	}
	want := []float64{0.3, 0.6, 0.9}
	if len(updates) != len(want) {
		t.Fatalf("updates = %v, want %v", updates, want)
	}
	for i := range want {
		if math.Abs(updates[i]-want[i]) > 1e-9 {
			t.Errorf("update %d = %v, want %v", i, updates[i], want[i])
		}
	}
}

func TestSourceClaim(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 10, 0), 1000)
	a, b := new(int), new(int)
	if err := src.Claim(a); err != nil {
		t.Fatal(err)
	}
	if err := src.Claim(a); err != nil {
		t.Errorf("re-claim by same owner: %v", err)
	}
	if err := src.Claim(b); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("claim by other owner: err = %v", err)
	}
	src.Release(a)
	if err := src.Claim(b); err != nil {
		t.Errorf("claim after release: %v", err)
	}
}

func TestSourceReplayAfterEndWhenResampling(t *testing.T) {
	cases := []struct {
		name    string
		restart func(*Source) error
	}{
		{name: "play", restart: func(s *Source) error { return s.Play() }},
		{name: "stop then play", restart: func(s *Source) error {
			s.Pause()
			if err := s.Seek(0); err != nil {
				return err
			}
			return s.Play()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := NewSource(openFixture(t, 500, 300, 16000), 1000)
			if err := src.Play(); err != nil {
				t.Fatal(err)
			}
			buf := make([][2]float64, 200)
			for i := 0; i < 20 && !src.Ended(); i++ {
				src.Stream(buf)
			}
			if !src.Ended() {
				t.Fatal("source never ended")
			}
			if err := tc.restart(src); err != nil {
				t.Fatal(err)
			}
			buf = buf[:100]
			src.Stream(buf)
			if src.Ended() || src.Paused() {
				t.Fatalf("replay ended at once (ended=%v paused=%v)", src.Ended(), src.Paused())
			}
			if buf[50][0] < 0.4 {
				t.Errorf("replayed sample = %v, want about 0.49", buf[50][0])
			}
		})
	}
}

func TestSourceSeekMidTrackWhenResampling(t *testing.T) {
	src := NewSource(openFixture(t, 500, 1000, 16000), 1000)
	src.Play()
	buf := make([][2]float64, 100)
	src.Stream(buf)
	if err := src.Seek(1); err != nil {
		t.Fatal(err)
	}
	src.Stream(buf)
	if src.Ended() {
		t.Fatal("source ended after a mid-track seek")
	}
	if buf[50][0] < 0.4 {
		t.Errorf("sample after seek = %v, want about 0.49", buf[50][0])
	}
}

func TestSourceSeekReportsPosition(t *testing.T) {
	src := NewSource(openFixture(t, 1000, 5000, 0), 1000)
	var updates []float64
	src.OnTimeUpdate(func(s float64) { updates = append(updates, s) })

	if err := src.Seek(3); err != nil {
		t.Fatal(err)
	}
	buf := make([][2]float64, 100)
	for i := 0; i < 10; i++ {
		src.Stream(buf)
	}
	if len(updates) != 1 || updates[0] != 3 {
		t.Fatalf("paused seek updates = %v, want [3]", updates)
	}

	updates = nil
	src.Play()
	if err := src.Seek(1); err != nil {
		t.Fatal(err)
	}
	src.Stream(buf)
	if len(updates) != 1 || updates[0] != 1 {
		t.Errorf("playing seek updates = %v, want [1]", updates)
	}
	if err := src.Seek(99); err != nil {
		t.Fatal(err)
	}
	if last := updates[len(updates)-1]; last != 5 {
		t.Errorf("clamped seek reported %v, want 5", last)
	}
}
