package effects

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// FilterKind selects the biquad response.
type FilterKind int

const (
	LowShelf FilterKind = iota
	Peaking
	HighShelf
)

func (k FilterKind) String() string {
	switch k {
	case LowShelf:
		return "lowshelf"
	case Peaking:
		return "peaking"
	case HighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

// shelfQ gives the shelves a slope of 1, like the Web Audio shelf nodes.
const shelfQ = 1 / math.Sqrt2

// Biquad is a stereo second-order IIR filter: one biquad.Section per channel,
// designed with the Audio EQ Cookbook formulas. Shelves ignore Q.
//
// The gain is stored as float64 bits so the UI goroutine can change it while
// the audio goroutine is filtering. Coefficients are redesigned on the audio
// goroutine the first time a new gain is seen and swapped into the sections
// without touching their state; there is no ramping.
type Biquad struct {
	kind       FilterKind
	sampleRate float64
	freq       float64
	q          float64
	gain       atomic.Uint64

	coeffGain  float64
	coeffReady bool
	sections   [2]*biquad.Section
}

// NewBiquad creates a filter. gainDB of 0 is flat for every kind.
func NewBiquad(kind FilterKind, sampleRate int, freq, q, gainDB float64) *Biquad {
	b := &Biquad{
		kind:       kind,
		sampleRate: float64(sampleRate),
		freq:       freq,
		q:          q,
		sections:   [2]*biquad.Section{biquad.NewSection(biquad.Identity()), biquad.NewSection(biquad.Identity())},
	}
	b.gain.Store(math.Float64bits(gainDB))
	return b
}

func (b *Biquad) Kind() FilterKind    { return b.kind }
func (b *Biquad) Frequency() float64  { return b.freq }
func (b *Biquad) Q() float64          { return b.q }
func (b *Biquad) SampleRate() float64 { return b.sampleRate }

// SetGain stores gainDB as-is. Range checking is left to the caller.
func (b *Biquad) SetGain(gainDB float64) {
	b.gain.Store(math.Float64bits(gainDB))
}

// Gain returns the value last passed to SetGain.
func (b *Biquad) Gain() float64 {
	return math.Float64frombits(b.gain.Load())
}

// design returns Identity when freq is at or above Nyquist.
func (b *Biquad) design(gainDB float64) biquad.Coefficients {
	switch b.kind {
	case LowShelf:
		return design.LowShelf(b.freq, gainDB, shelfQ, b.sampleRate)
	case HighShelf:
		return design.HighShelf(b.freq, gainDB, shelfQ, b.sampleRate)
	default:
		return design.Peak(b.freq, gainDB, b.q, b.sampleRate)
	}
}

func (b *Biquad) update() {
	g := b.Gain()
	if b.coeffReady && g == b.coeffGain {
		return
	}
	c := b.design(g)
	b.sections[0].Coefficients = c
	b.sections[1].Coefficients = c
	b.coeffGain = g
	b.coeffReady = true
}

func (b *Biquad) Process(l, r float64) (float64, float64) {
	b.update()
	return b.sections[0].ProcessSample(l), b.sections[1].ProcessSample(r)
}

func (b *Biquad) Reset() {
	b.sections[0].Reset()
	b.sections[1].Reset()
}
