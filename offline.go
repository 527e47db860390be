package visplay

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	intgraph "github.com/cbegin/visplay-go/internal/graph"
	intmedia "github.com/cbegin/visplay-go/internal/media"
)

const renderChunk = 1024

// RenderOptions controls RenderFile. The zero value is not useful; start
// from DefaultRenderOptions.
type RenderOptions struct {
	SampleRate int        // output rate; 0 keeps the track's rate
	Gains      [3]float64 // dB per band, indexed by graph.Band
	Volume     float64    // linear, applied before the filters
	Seconds    float64    // stop after this much output; 0 renders the whole track
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Volume: 1}
}

// RenderResult describes a finished render.
type RenderResult struct {
	Frames     int
	SampleRate int
	Spectrum   []byte // analyser output after the last chunk
}

// RenderFile decodes in, runs it through the same equalizer and analyser
// the player uses, and writes 16-bit stereo PCM WAV to out.
func RenderFile(in, out string, opts RenderOptions) (RenderResult, error) {
	if opts.SampleRate < 0 {
		return RenderResult{}, errors.New("sampleRate must not be negative")
	}
	if opts.Seconds < 0 || math.IsNaN(opts.Seconds) {
		return RenderResult{}, errors.New("seconds must not be negative")
	}
	track, err := intmedia.Open(in)
	if err != nil {
		return RenderResult{}, err
	}
	rate := opts.SampleRate
	if rate == 0 {
		rate = int(track.Format.SampleRate)
	}

	g := intgraph.New(rate)
	g.Initialize()
	for _, band := range intgraph.Bands {
		if err := g.SetBandGain(band, opts.Gains[band]); err != nil {
			track.Close()
			return RenderResult{}, err
		}
	}
	src := intmedia.NewSource(track, rate)
	defer src.Close()
	src.SetVolume(opts.Volume)
	if err := g.Attach(src); err != nil {
		return RenderResult{}, err
	}
	defer g.Detach()
	if err := src.Play(); err != nil {
		return RenderResult{}, err
	}

	total := int(math.Ceil(src.Duration() * float64(rate)))
	if opts.Seconds > 0 {
		total = min(total, int(opts.Seconds*float64(rate)))
	}

	f, err := os.Create(out)
	if err != nil {
		return RenderResult{}, fmt.Errorf("create %s: %w", out, err)
	}
	enc := gowav.NewEncoder(f, rate, 16, 2, 1)
	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		Data:           make([]int, renderChunk*2),
		SourceBitDepth: 16,
	}
	buf := make([]float32, renderChunk*2)

	written := 0
	for written < total {
		n := min(renderChunk, total-written)
		g.Process(buf[:n*2])
		pcm.Data = pcm.Data[:n*2]
		for i, v := range buf[:n*2] {
			pcm.Data[i] = toPCM16(v)
		}
		if err := enc.Write(pcm); err != nil {
			f.Close()
			return RenderResult{}, fmt.Errorf("write %s: %w", out, err)
		}
		written += n
		if src.Ended() {
			break
		}
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return RenderResult{}, fmt.Errorf("finish %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return RenderResult{}, err
	}
	return RenderResult{
		Frames:     written,
		SampleRate: rate,
		Spectrum:   g.CurrentSpectrum(nil),
	}, nil
}

func toPCM16(v float32) int {
	s := math.Round(float64(v) * 32767)
	return int(math.Max(-32768, math.Min(32767, s)))
}
