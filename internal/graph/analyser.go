package graph

import (
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	// FFTSize is the number of time-domain samples per transform.
	FFTSize = 256
	// BinCount is the number of frequency bins produced per transform.
	BinCount = FFTSize / 2

	defaultSmoothing = 0.8
	defaultMinDB     = -100.0
	defaultMaxDB     = -30.0

	fresh = 1 << 2
)

// Analyser computes byte frequency data the same way a Web Audio analyser
// node does: Blackman window, FFT, magnitude/N, exponential smoothing across
// calls, dB conversion, then a linear map of [minDB, maxDB] onto 0..255.
//
// Write runs on the audio goroutine and publishes time-domain frames through
// three preallocated buffers: the writer fills its back buffer and swaps it
// into the shared slot, the reader swaps the shared slot into its front buffer
// when it holds a newer frame. ByteFrequencyData runs on the render goroutine
// and never blocks the writer.
type Analyser struct {
	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	// writer side
	ring []float64
	pos  int
	back int

	frames [3][]float64
	shared atomic.Uint32 // frame index, with fresh set when unread
	reset  atomic.Bool

	// reader side
	front    int
	window   []float64
	input    []float64
	smoothed []float64
}

func NewAnalyser(size int) *Analyser {
	if size < 32 || size&(size-1) != 0 {
		size = FFTSize
	}
	a := &Analyser{
		size:      size,
		smoothing: defaultSmoothing,
		minDB:     defaultMinDB,
		maxDB:     defaultMaxDB,
		ring:      make([]float64, size),
		frames:    [3][]float64{make([]float64, size), make([]float64, size), make([]float64, size)},
		front:     2,
		window:    window.Blackman(size),
		input:     make([]float64, size),
		smoothed:  make([]float64, size/2),
	}
	a.shared.Store(1)
	return a
}

func (a *Analyser) FFTSize() int           { return a.size }
func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// Write appends the mono mix of samples to the analysis window.
func (a *Analyser) Write(samples [][2]float64) {
	if len(samples) == 0 {
		return
	}
	for i := range samples {
		a.ring[a.pos] = (samples[i][0] + samples[i][1]) * 0.5
		a.pos = (a.pos + 1) % a.size
	}
	frame := a.frames[a.back]
	for i := range frame {
		frame[i] = a.ring[(a.pos+i)%a.size]
	}
	a.publish()
}

func (a *Analyser) publish() {
	old := a.shared.Swap(uint32(a.back) | fresh)
	a.back = int(old &^ fresh)
}

// Reset forgets buffered audio and smoothing history. It must not run
// concurrently with Write.
func (a *Analyser) Reset() {
	clear(a.ring)
	a.pos = 0
	clear(a.frames[a.back])
	a.publish()
	a.reset.Store(true)
}

// ByteFrequencyData fills dst (grown to FrequencyBinCount if needed) and returns it.
func (a *Analyser) ByteFrequencyData(dst []byte) []byte {
	n := a.size / 2
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	if a.shared.Load()&fresh != 0 {
		a.front = int(a.shared.Swap(uint32(a.front)) &^ fresh)
	}
	if a.reset.Swap(false) {
		clear(a.smoothed)
	}
	copy(a.input, a.frames[a.front])
	for i := range a.input {
		a.input[i] *= a.window[i]
	}
	spectrum := fft.FFTReal(a.input)

	scale := 255 / (a.maxDB - a.minDB)
	for k := 0; k < n; k++ {
		mag := cmplx.Abs(spectrum[k]) / float64(a.size)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		db := 20 * math.Log10(a.smoothed[k])
		if math.IsInf(db, -1) || math.IsNaN(db) {
			dst[k] = 0
			continue
		}
		v := math.Floor(scale * (db - a.minDB))
		dst[k] = byte(max(0, min(255, v)))
	}
	return dst
}
