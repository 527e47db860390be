package media

import (
	"errors"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
)

var ErrAlreadyAttached = errors.New("media: source already attached to another graph")

// TimeUpdateInterval is the decoded-audio distance between time notifications, in seconds.
const TimeUpdateInterval = 0.25

// Source plays one Track. It starts paused, applies its volume before any
// downstream processing, and reports silence while paused or after the end.
//
// Stream is called from the audio goroutine; everything else from the UI
// goroutine. A single mutex serializes the two.
type Source struct {
	mu         sync.Mutex
	track      *Track
	outputRate beep.SampleRate
	stream     beep.Streamer
	paused     bool
	ended      bool
	volume     float64
	owner      any
	lastNotify int

	onTime  func(seconds float64)
	onEnded func()
}

// NewSource wraps t, resampling to outputRate when the rates differ.
func NewSource(t *Track, outputRate int) *Source {
	s := &Source{
		track:      t,
		outputRate: beep.SampleRate(outputRate),
		paused:     true,
		volume:     1,
	}
	s.stream = s.output()
	return s
}

// output returns the track streamer, behind a fresh resampler when the
// rates differ. A resampler stays ended once its input runs out, so every
// reposition needs a new one.
func (s *Source) output() beep.Streamer {
	if s.outputRate <= 0 || s.track.Format.SampleRate == s.outputRate {
		return s.track.streamer
	}
	return beep.Resample(4, s.track.Format.SampleRate, s.outputRate, s.track.streamer)
}

func (s *Source) rewindLocked(frame int) error {
	if err := s.track.streamer.Seek(frame); err != nil {
		return err
	}
	s.stream = s.output()
	s.ended = false
	s.lastNotify = frame
	return nil
}

// OnTimeUpdate installs fn, called from the audio goroutine with the current
// position at most every TimeUpdateInterval of decoded audio.
func (s *Source) OnTimeUpdate(fn func(seconds float64)) {
	s.mu.Lock()
	s.onTime = fn
	s.mu.Unlock()
}

// OnEnded installs fn, called from the audio goroutine when the track runs out.
func (s *Source) OnEnded(fn func()) {
	s.mu.Lock()
	s.onEnded = fn
	s.mu.Unlock()
}

func (s *Source) Claim(owner any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != nil && s.owner != owner {
		return ErrAlreadyAttached
	}
	s.owner = owner
	return nil
}

func (s *Source) Release(owner any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == owner {
		s.owner = nil
	}
}

func (s *Source) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Source) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Play resumes playback. After the end of the track it restarts from 0.
func (s *Source) Play() error {
	s.mu.Lock()
	restarted := s.ended
	if restarted {
		if err := s.rewindLocked(0); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.paused = false
	fire := s.onTime
	s.mu.Unlock()

	if restarted && fire != nil {
		fire(0)
	}
	return nil
}

func (s *Source) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Seek moves to seconds, clamped to [0, duration], and reports the new
// position to the time-update callback whether or not the source is paused.
func (s *Source) Seek(seconds float64) error {
	s.mu.Lock()
	rate := float64(s.track.Format.SampleRate)
	n := s.track.Len()
	p := 0
	if !math.IsNaN(seconds) && seconds > 0 {
		p = int(math.Min(seconds*rate, float64(n)))
	}
	if err := s.rewindLocked(p); err != nil {
		s.mu.Unlock()
		return err
	}
	pos := s.positionLocked()
	fire := s.onTime
	s.mu.Unlock()

	if fire != nil {
		fire(pos)
	}
	return nil
}

// Position returns the decoded position in seconds.
func (s *Source) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Source) positionLocked() float64 {
	rate := s.track.Format.SampleRate
	if rate <= 0 {
		return 0
	}
	return float64(s.track.streamer.Position()) / float64(rate)
}

func (s *Source) Duration() float64 { return s.track.Seconds() }

// SetVolume stores v as the linear output gain. Values are used as given.
func (s *Source) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

func (s *Source) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Source) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	if s.paused || s.ended {
		s.mu.Unlock()
		clear(samples)
		return len(samples), true
	}
	n, ok := s.stream.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= s.volume
		samples[i][1] *= s.volume
	}
	clear(samples[n:])

	var fireTime func(float64)
	var fireEnded func()
	pos := s.track.streamer.Position()
	if !ok || s.stream.Err() != nil || (n < len(samples) && pos >= s.track.Len()) {
		s.ended = true
		s.paused = true
		fireEnded = s.onEnded
	}
	step := int(TimeUpdateInterval * float64(s.track.Format.SampleRate))
	if s.onTime != nil && (pos-s.lastNotify >= step || s.lastNotify-pos >= step || s.ended) {
		s.lastNotify = pos
		fireTime = s.onTime
	}
	seconds := s.positionLocked()
	s.mu.Unlock()

	if fireTime != nil {
		fireTime(seconds)
	}
	if fireEnded != nil {
		fireEnded()
	}
	return len(samples), true
}

func (s *Source) Err() error { return nil }

// Close releases the decoder and the file.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	return s.track.Close()
}
