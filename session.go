package visplay

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	intaudio "github.com/cbegin/visplay-go/internal/audio"
	intgraph "github.com/cbegin/visplay-go/internal/graph"
	intmedia "github.com/cbegin/visplay-go/internal/media"
	inttheme "github.com/cbegin/visplay-go/internal/theme"
	inttransport "github.com/cbegin/visplay-go/internal/transport"
	intviz "github.com/cbegin/visplay-go/internal/visualizer"
)

// ErrNoTrack is returned by Play before any file has been loaded.
var ErrNoTrack = errors.New("visplay: no track loaded")

// Output is the audio backend that pulls frames from the graph.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

// OutputFactory creates the backend for src at sampleRate.
type OutputFactory func(sampleRate int, src intaudio.SampleSource) (Output, error)

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	sampleRate    int
	palettes      []inttheme.Palette
	styler        inttheme.Styler
	outputFactory OutputFactory
	bufferSize    time.Duration
	logger        *log.Logger
	volume        float64
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		sampleRate: 48000,
		palettes:   inttheme.DefaultPalettes(),
		logger:     log.New(io.Discard, "", 0),
		volume:     1,
	}
}

func WithSampleRate(rate int) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.sampleRate = rate
	}
}

func WithPalettes(palettes []inttheme.Palette) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.palettes = palettes
	}
}

// WithStyler installs the target that receives theme colors.
func WithStyler(styler inttheme.Styler) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.styler = styler
	}
}

// WithOutputFactory replaces the ebiten audio backend, mostly for tests.
func WithOutputFactory(f OutputFactory) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.outputFactory = f
	}
}

// WithBufferSize sets the output buffer of the default backend. Shorter
// buffers keep the displayed position closer to what is heard.
func WithBufferSize(d time.Duration) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.bufferSize = d
	}
}

func WithLogger(l *log.Logger) SessionOption {
	return func(cfg *sessionConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithInitialVolume sets the linear volume, 0..1, applied to every loaded track.
func WithInitialVolume(v float64) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.volume = v
	}
}

// Session owns everything one player window needs: the processing graph,
// the theme store, the visualizer loop, the transport controller, the
// current source and the output backend.
//
// Load, Poll, Close and the transport methods belong to the UI goroutine.
// The output backend pulls from Graph on its own goroutine.
type Session struct {
	cfg    sessionConfig
	logger *log.Logger

	graph  *intgraph.Graph
	themes *inttheme.Store
	loop   *intviz.Loop
	ctl    *inttransport.Controller

	mu      sync.Mutex
	source  *intmedia.Source
	out     Output
	volume  float64
	current atomic.Pointer[intmedia.Source]

	pendingTime atomic.Uint64
	hasTime     atomic.Bool
	ended       atomic.Bool
}

func NewSession(opts ...SessionOption) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if len(cfg.palettes) == 0 {
		return nil, errors.New("at least one palette is required")
	}
	if cfg.outputFactory == nil {
		buffer := cfg.bufferSize
		cfg.outputFactory = func(rate int, src intaudio.SampleSource) (Output, error) {
			return intaudio.NewPlayer(rate, src, buffer)
		}
	}
	s := &Session{
		cfg:    cfg,
		logger: cfg.logger,
		graph:  intgraph.New(cfg.sampleRate),
		themes: inttheme.NewStore(cfg.palettes, cfg.styler),
		volume: cfg.volume,
	}
	s.ctl = inttransport.NewController(s)
	s.ctl.SetVolume(cfg.volume * 100)
	s.loop = intviz.NewLoop(s.graph, s.themes)
	s.themes.Apply()
	return s, nil
}

func (s *Session) Graph() *intgraph.Graph              { return s.graph }
func (s *Session) Themes() *inttheme.Store             { return s.themes }
func (s *Session) Loop() *intviz.Loop                  { return s.loop }
func (s *Session) Transport() *inttransport.Controller { return s.ctl }
func (s *Session) SampleRate() int                     { return s.cfg.sampleRate }

// Load opens path and makes it the current track, paused at 0. On failure
// the previous track and the display state are left as they were.
func (s *Session) Load(path string) error {
	track, err := intmedia.Open(path)
	if err != nil {
		s.logger.Printf("load %s: %v", path, err)
		return err
	}
	src := intmedia.NewSource(track, s.cfg.sampleRate)

	s.mu.Lock()
	src.SetVolume(s.volume)
	src.OnTimeUpdate(func(seconds float64) {
		if s.current.Load() != src {
			return
		}
		s.pendingTime.Store(math.Float64bits(seconds))
		s.hasTime.Store(true)
	})
	src.OnEnded(func() {
		if s.current.Load() != src {
			return
		}
		s.ended.Store(true)
	})

	s.graph.Initialize()
	if err := s.graph.Attach(src); err != nil {
		s.mu.Unlock()
		src.Close()
		s.logger.Printf("attach %s: %v", path, err)
		return fmt.Errorf("attach %s: %w", track.Title, err)
	}
	if s.out == nil {
		out, err := s.cfg.outputFactory(s.cfg.sampleRate, s.graph)
		if err != nil {
			s.graph.Detach()
			s.mu.Unlock()
			src.Close()
			s.logger.Printf("audio output: %v", err)
			return fmt.Errorf("audio output: %w", err)
		}
		s.out = out
	}
	prev := s.source
	s.source = src
	s.current.Store(src)
	s.hasTime.Store(false)
	s.ended.Store(false)
	out := s.out
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	if !out.IsPlaying() {
		out.Play()
	}

	s.ctl.TrackLoaded(track.Title)
	s.ctl.MetadataLoaded(src.Duration())
	s.loop.SetTrackLoaded(true)
	s.logger.Printf("loaded %s (%d Hz, %.1fs)", track.Title, track.Format.SampleRate, src.Duration())
	return nil
}

// Poll mirrors progress reported by the audio goroutine into the
// transport. Call it once per UI frame.
func (s *Session) Poll() {
	if s.hasTime.Swap(false) {
		s.ctl.TimeUpdate(math.Float64frombits(s.pendingTime.Load()))
	}
	if s.ended.Swap(false) {
		s.ctl.Ended()
	}
}

// Current returns the loaded source, or nil.
func (s *Session) Current() *intmedia.Source { return s.current.Load() }

func (s *Session) SetBandGain(band intgraph.Band, gainDB float64) error {
	return s.graph.SetBandGain(band, gainDB)
}

// NextTheme cycles to the next palette and applies it.
func (s *Session) NextTheme() inttheme.Palette {
	return s.themes.Next()
}

// Close stops the loop and the output and releases the current track.
func (s *Session) Close() error {
	s.loop.SetTrackLoaded(false)
	s.loop.Stop()
	s.mu.Lock()
	src, out := s.source, s.out
	s.source, s.out = nil, nil
	s.current.Store(nil)
	s.mu.Unlock()

	s.graph.Detach()
	var errs []error
	if out != nil {
		errs = append(errs, out.Stop())
	}
	if src != nil {
		errs = append(errs, src.Close())
	}
	return errors.Join(errs...)
}

// Paused reports true when nothing is loaded.
func (s *Session) Paused() bool {
	if src := s.current.Load(); src != nil {
		return src.Paused()
	}
	return true
}

func (s *Session) Play() error {
	src := s.current.Load()
	if src == nil {
		return ErrNoTrack
	}
	return src.Play()
}

func (s *Session) Pause() {
	if src := s.current.Load(); src != nil {
		src.Pause()
	}
}

// Seek is a no-op without a track.
func (s *Session) Seek(seconds float64) error {
	if src := s.current.Load(); src != nil {
		return src.Seek(seconds)
	}
	return nil
}

func (s *Session) Position() float64 {
	if src := s.current.Load(); src != nil {
		return src.Position()
	}
	return 0
}

func (s *Session) Duration() float64 {
	if src := s.current.Load(); src != nil {
		return src.Duration()
	}
	return 0
}

// SetVolume applies v to the current track and remembers it for later loads.
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
	if src := s.current.Load(); src != nil {
		src.SetVolume(v)
	}
}

func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}
