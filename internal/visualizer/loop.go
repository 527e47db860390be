package visualizer

import (
	"context"
	"sync"

	"github.com/cbegin/visplay-go/internal/theme"
)

// State is the loop's scheduling state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// SpectrumSource produces the frequency snapshot for the current instant.
type SpectrumSource interface {
	CurrentSpectrum(dst []byte) []byte
}

// Loop paints one snapshot per display refresh while it is running. It runs
// only when a track is loaded and the view is visible; every start issues a
// new cancellation token and every stop cancels it.
type Loop struct {
	src    SpectrumSource
	themes *theme.Store

	mu      sync.Mutex
	state   State
	ctx     context.Context
	cancel  context.CancelFunc
	loaded  bool
	visible bool
	frames  uint64
	buf     []byte
}

// NewLoop creates an idle loop. The view starts visible.
func NewLoop(src SpectrumSource, themes *theme.Store) *Loop {
	return &Loop{src: src, themes: themes, visible: true}
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frames returns how many frames have been painted.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Context returns the token of the current run, or nil while idle.
func (l *Loop) Context() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx
}

func (l *Loop) SetTrackLoaded(loaded bool) {
	l.mu.Lock()
	l.loaded = loaded
	l.reconcileLocked()
	l.mu.Unlock()
}

func (l *Loop) SetVisible(visible bool) {
	l.mu.Lock()
	if l.visible != visible {
		l.visible = visible
		l.reconcileLocked()
	}
	l.mu.Unlock()
}

// Stop cancels the current run regardless of the gates. The loop starts
// again on the next gate change that allows it.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopLocked()
	l.mu.Unlock()
}

func (l *Loop) reconcileLocked() {
	want := l.loaded && l.visible
	switch {
	case want && l.state == Idle:
		l.ctx, l.cancel = context.WithCancel(context.Background())
		l.state = Running
	case !want && l.state == Running:
		l.stopLocked()
	}
}

func (l *Loop) stopLocked() {
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = nil, nil
	l.state = Idle
}

// Frame is the per-refresh callback. It paints one snapshot onto s and
// reports whether it did.
func (l *Loop) Frame(s Surface) bool {
	l.mu.Lock()
	if l.state != Running || l.ctx.Err() != nil {
		l.mu.Unlock()
		return false
	}
	l.buf = l.src.CurrentSpectrum(l.buf)
	spectrum := l.buf
	l.frames++
	l.mu.Unlock()

	Paint(s, spectrum, l.themes.Current())
	return true
}
