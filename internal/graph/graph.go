// Package graph holds the fixed signal path between a decoded source and the
// audio output:
//
//	source -> low shelf -> mid peaking -> high shelf -> analyser -> destination
//
// A Graph owns at most one source at a time. Attaching a new source tears the
// previous one down instead of leaving it connected.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gopxl/beep/v2"

	intfx "github.com/cbegin/visplay-go/internal/effects"
)

const (
	LowShelfFrequency  = 320.0
	PeakingFrequency   = 1000.0
	PeakingQ           = 0.707
	HighShelfFrequency = 3200.0
)

var (
	ErrNotInitialized = errors.New("graph: not initialized")
	ErrUnknownBand    = errors.New("graph: unknown equalizer band")
)

// Claimer is implemented by sources that may only feed one graph at a time.
type Claimer interface {
	Claim(owner any) error
	Release(owner any)
}

// Band selects one of the three equalizer filters.
type Band int

const (
	Low Band = iota
	Mid
	High
)

var Bands = [3]Band{Low, Mid, High}

func (b Band) String() string {
	switch b {
	case Low:
		return "low"
	case Mid:
		return "mid"
	case High:
		return "high"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

type Graph struct {
	sampleRate int

	mu          sync.Mutex
	initialized bool
	source      beep.Streamer
	filters     [3]*intfx.Biquad
	chain       *intfx.Chain
	analyser    *Analyser
	buf         [][2]float64
}

func New(sampleRate int) *Graph {
	return &Graph{sampleRate: sampleRate}
}

func (g *Graph) SampleRate() int { return g.sampleRate }

// Initialize creates the analyser and the three filters at 0 dB. Calling it
// again is a no-op.
func (g *Graph) Initialize() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initialized {
		return
	}
	g.analyser = NewAnalyser(FFTSize)
	g.filters[Low] = intfx.NewBiquad(intfx.LowShelf, g.sampleRate, LowShelfFrequency, 0, 0)
	g.filters[Mid] = intfx.NewBiquad(intfx.Peaking, g.sampleRate, PeakingFrequency, PeakingQ, 0)
	g.filters[High] = intfx.NewBiquad(intfx.HighShelf, g.sampleRate, HighShelfFrequency, 0, 0)
	g.chain = intfx.NewChain(g.filters[Low], g.filters[Mid], g.filters[High])
	g.initialized = true
}

func (g *Graph) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initialized
}

// Attach wires src into the chain. Any previously attached source is
// released and the filter and analyser history is cleared.
func (g *Graph) Attach(src beep.Streamer) error {
	if src == nil {
		return errors.New("graph: nil source")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.initialized {
		return ErrNotInitialized
	}
	if src == g.source {
		return nil
	}
	if c, ok := src.(Claimer); ok {
		if err := c.Claim(g); err != nil {
			return err
		}
	}
	g.detachLocked()
	g.source = src
	return nil
}

// Detach disconnects the current source, if any.
func (g *Graph) Detach() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.detachLocked()
}

func (g *Graph) detachLocked() {
	if g.source == nil {
		return
	}
	if c, ok := g.source.(Claimer); ok {
		c.Release(g)
	}
	g.source = nil
	g.chain.Reset()
	g.analyser.Reset()
}

func (g *Graph) Attached() beep.Streamer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source
}

// Filter returns the biquad behind band, or nil before Initialize.
func (g *Graph) Filter(band Band) *intfx.Biquad {
	if band < Low || band > High {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filters[band]
}

func (g *Graph) Analyser() *Analyser {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyser
}

// SetBandGain forwards gainDB to the band's filter unchanged. The change is
// picked up by the audio goroutine on its next buffer.
func (g *Graph) SetBandGain(band Band, gainDB float64) error {
	f := g.Filter(band)
	if f == nil {
		if band < Low || band > High {
			return fmt.Errorf("%w: %d", ErrUnknownBand, int(band))
		}
		return ErrNotInitialized
	}
	f.SetGain(gainDB)
	return nil
}

func (g *Graph) BandGain(band Band) (float64, error) {
	f := g.Filter(band)
	if f == nil {
		if band < Low || band > High {
			return 0, fmt.Errorf("%w: %d", ErrUnknownBand, int(band))
		}
		return 0, ErrNotInitialized
	}
	return f.Gain(), nil
}

// CurrentSpectrum copies the analyser's byte frequency data into dst. Before
// Initialize it returns BinCount zeros.
func (g *Graph) CurrentSpectrum(dst []byte) []byte {
	a := g.Analyser()
	if a == nil {
		if cap(dst) < BinCount {
			dst = make([]byte, BinCount)
		}
		dst = dst[:BinCount]
		clear(dst)
		return dst
	}
	return a.ByteFrequencyData(dst)
}

// Stream pulls from the attached source through the filters and the
// analyser. With no source it produces silence, which the analyser also sees.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.initialized {
		clear(samples)
		return len(samples), true
	}
	n := 0
	if g.source != nil {
		n, _ = g.source.Stream(samples)
	}
	clear(samples[n:])
	g.chain.ProcessFrames(samples)
	g.analyser.Write(samples)
	return len(samples), true
}

func (g *Graph) Err() error { return nil }

// Process is the destination: it renders interleaved stereo float32 frames
// for the output backend.
func (g *Graph) Process(dst []float32) {
	frames := len(dst) / 2
	if cap(g.buf) < frames {
		g.buf = make([][2]float64, frames)
	}
	buf := g.buf[:frames]
	g.Stream(buf)
	for i := range buf {
		dst[2*i] = float32(buf[i][0])
		dst[2*i+1] = float32(buf[i][1])
	}
}
