package visplay

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	intgraph "github.com/cbegin/visplay-go/internal/graph"
)

func writeConstWAV(t *testing.T, rate, frames, value int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := gowav.NewEncoder(f, rate, 16, 1, 1)
	data := make([]int, frames)
	for i := range data {
		data[i] = value
	}
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	f.Close()
	return path
}

func readWAV(t *testing.T, path string) *goaudio.IntBuffer {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("output is not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return buf
}

func TestRenderFileAppliesVolume(t *testing.T) {
	in := writeConstWAV(t, 8000, 8000, 8000)
	out := filepath.Join(t.TempDir(), "out.wav")
	opts := DefaultRenderOptions()
	opts.Volume = 0.5
	res, err := RenderFile(in, out, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Frames != 8000 || res.SampleRate != 8000 {
		t.Fatalf("result = %d frames @ %d", res.Frames, res.SampleRate)
	}
	if len(res.Spectrum) != intgraph.BinCount {
		t.Errorf("spectrum has %d bins", len(res.Spectrum))
	}
	pcm := readWAV(t, out)
	if pcm.Format.NumChannels != 2 || pcm.Format.SampleRate != 8000 {
		t.Fatalf("format = %+v", pcm.Format)
	}
	if got := len(pcm.Data) / 2; got != 8000 {
		t.Fatalf("frames in file = %d", got)
	}
	for _, i := range []int{0, 1, 7998, 7999} {
		if d := pcm.Data[i] - 4000; d < -2 || d > 2 {
			t.Errorf("sample %d = %d, want about 4000", i, pcm.Data[i])
		}
	}
}

func TestRenderFileLowShelfBoostsDC(t *testing.T) {
	in := writeConstWAV(t, 8000, 8000, 2000)
	out := filepath.Join(t.TempDir(), "out.wav")
	opts := DefaultRenderOptions()
	opts.Gains[intgraph.Low] = 12
	if _, err := RenderFile(in, out, opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	pcm := readWAV(t, out)
	last := float64(pcm.Data[len(pcm.Data)-1])
	want := 2000 * math.Pow(10, 12.0/20)
	if math.Abs(last-want)/want > 0.02 {
		t.Errorf("settled DC = %v, want about %v", last, want)
	}
}

func TestRenderFileLimitsAndResamples(t *testing.T) {
	in := writeConstWAV(t, 8000, 4000, 1000)
	cases := []struct {
		name       string
		rate       int
		seconds    float64
		wantFrames int
		wantRate   int
	}{
		{name: "seconds limit", seconds: 0.25, wantFrames: 2000, wantRate: 8000},
		{name: "upsample", rate: 16000, wantFrames: 8000, wantRate: 16000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.wav")
			opts := DefaultRenderOptions()
			opts.SampleRate = tc.rate
			opts.Seconds = tc.seconds
			res, err := RenderFile(in, out, opts)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if res.Frames != tc.wantFrames || res.SampleRate != tc.wantRate {
				t.Errorf("result = %d frames @ %d, want %d @ %d", res.Frames, res.SampleRate, tc.wantFrames, tc.wantRate)
			}
			pcm := readWAV(t, out)
			if pcm.Format.SampleRate != tc.wantRate || len(pcm.Data)/2 != tc.wantFrames {
				t.Errorf("file = %d frames @ %d", len(pcm.Data)/2, pcm.Format.SampleRate)
			}
		})
	}
}

func TestRenderFileErrors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")
	if _, err := RenderFile(filepath.Join(t.TempDir(), "missing.wav"), out, DefaultRenderOptions()); err == nil {
		t.Errorf("expected error for missing input")
	}
	in := writeConstWAV(t, 8000, 100, 0)
	opts := DefaultRenderOptions()
	opts.Seconds = -1
	if _, err := RenderFile(in, out, opts); err == nil {
		t.Errorf("expected error for negative seconds")
	}
}
