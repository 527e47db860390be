package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/cbegin/visplay-go"
	"github.com/cbegin/visplay-go/internal/config"
	"github.com/cbegin/visplay-go/internal/graph"
	"github.com/cbegin/visplay-go/internal/theme"
	"github.com/cbegin/visplay-go/internal/transport"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	minWindowW = 980
	minWindowH = 680

	eqMinDB  = -12.0
	eqMaxDB  = 12.0
	seekStep = 5.0
	volStep  = 5.0
)

var bandLabels = [3]string{"Low", "Mid", "High"}

type dragTarget int

const (
	dragNone dragTarget = iota
	dragSeek
	dragVolume
	dragEQ
)

type game struct {
	session *visplay.Session
	text    *textRenderer
	scope   scopeSurface

	// Chrome colours pushed by the theme store, indexed by theme.Role.
	colors [4]color.RGBA

	dragging dragTarget
	dragBand graph.Band
	eqGains  [3]float64

	status    string
	statusErr bool

	cwd        string
	nav        []navEntry
	navScroll  int
	loadedPath string

	viewW int
	viewH int
}

func newGame(s *visplay.Session, cfg config.Config) (*game, error) {
	cwd := cfg.Dir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	g := &game{
		session: s,
		text:    newTextRenderer(),
		status:  "Ready",
		cwd:     cwd,
		viewW:   cfg.WindowWidth,
		viewH:   cfg.WindowHeight,
	}
	s.Themes().SetStyler(g)
	s.Themes().Select(cfg.Theme)

	if cfg.InitialFile != "" {
		p, err := filepath.Abs(cfg.InitialFile)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", cfg.InitialFile, err)
		}
		if cfg.Dir == "" {
			g.cwd = filepath.Dir(p)
		}
		g.loadFile(p)
	}
	if err := g.refreshNav(); err != nil {
		g.setError(err.Error())
	}
	return g, nil
}

// SetColor implements theme.Styler.
func (g *game) SetColor(role theme.Role, c color.RGBA) {
	if int(role) < len(g.colors) {
		g.colors[role] = c
	}
}

func (g *game) Update() error {
	g.session.Poll()
	g.session.Loop().SetVisible(!ebiten.IsWindowMinimized())
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()
	view := g.session.Transport().View()

	drawSunkenPanel(screen, l.nav)
	drawPanel(screen, l.eq)
	drawSunkenPanel(screen, l.info)
	drawSunkenPanel(screen, l.scope)
	drawPanel(screen, l.progress)
	g.text.button(screen, l.play, view.PlayLabel, color.White)
	g.text.button(screen, l.stop, "Stop", color.White)
	g.text.button(screen, l.theme, "Theme: "+g.session.Themes().Current().Name, g.colors[theme.RoleAccent])
	drawPanel(screen, l.volume)
	drawSunkenPanel(screen, l.status)

	g.drawNavigator(screen, l.nav)
	g.drawEQ(screen, l.eq)
	g.drawInfo(screen, l.info, view)
	g.drawScope(screen, l.scope)
	g.drawProgress(screen, l.progress, view)
	g.drawVolume(screen, l.volume, view)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = max(outsideW, minWindowW)
	g.viewH = max(outsideH, minWindowH)
	return g.viewW, g.viewH
}

type uiLayout struct {
	nav, eq, info, scope, progress image.Rectangle
	play, stop, theme, volume      image.Rectangle
	status                         image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	pad := 20
	rowH := 44
	statusH := 40

	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH
	contentBottom := controlsTop - 12

	navW := 300
	eqH := 180
	eqTop := contentBottom - eqH
	navRect := image.Rect(pad, pad, pad+navW, eqTop-8)
	eqRect := image.Rect(pad, eqTop, pad+navW, contentBottom)

	rightX := navRect.Max.X + 12
	rightW := max(w-rightX-pad, 320)
	infoRect := image.Rect(rightX, pad, rightX+rightW, pad+lineH*2+20)
	progressRect := image.Rect(rightX, contentBottom-rowH, rightX+rightW, contentBottom)
	scopeRect := image.Rect(rightX, infoRect.Max.Y+12, rightX+rightW, progressRect.Min.Y-12)

	playRect := image.Rect(pad, controlsTop, pad+130, controlsTop+rowH)
	stopRect := image.Rect(pad+142, controlsTop, pad+260, controlsTop+rowH)
	themeRect := image.Rect(pad+272, controlsTop, pad+500, controlsTop+rowH)
	volRight := min(pad+512+340, w-pad)
	volumeRect := image.Rect(pad+512, controlsTop, volRight, controlsTop+rowH)

	statusRect := image.Rect(pad, statusTop, w-pad, statusTop+statusH)

	return uiLayout{
		nav: navRect, eq: eqRect, info: infoRect, scope: scopeRect, progress: progressRect,
		play: playRect, stop: stopRect, theme: themeRect, volume: volumeRect,
		status: statusRect,
	}
}

func (g *game) handleKeys() {
	ctl := g.session.Transport()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePlayPause()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.nextTheme()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.seek(ctl.View().ProgressValue + seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.seek(ctl.View().ProgressValue - seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.setVolume(ctl.View().VolumeSlider + volStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.setVolume(ctl.View().VolumeSlider - volStep)
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.play):
			g.togglePlayPause()
		case pointInRect(mx, my, l.stop):
			g.stop()
		case pointInRect(mx, my, l.theme):
			g.nextTheme()
		case pointInRect(mx, my, l.progress):
			g.dragging = dragSeek
		case pointInRect(mx, my, l.volume):
			g.dragging = dragVolume
		case pointInRect(mx, my, l.eq):
			if band, ok := eqBandAt(mx, l.eq); ok {
				g.dragging = dragEQ
				g.dragBand = band
			}
		case pointInRect(mx, my, l.nav):
			g.clickNavigator(my, l.nav)
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = dragNone
	}
	switch g.dragging {
	case dragSeek:
		if total := g.session.Transport().View().ProgressMax; total > 0 {
			g.seek(trackFrac(mx, progressTrack(l.progress)) * total)
		}
	case dragVolume:
		g.setVolume(trackFrac(mx, volumeTrack(l.volume)) * 100)
	case dragEQ:
		g.dragEQ(my, l.eq)
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.nav) {
		g.navScroll = max(0, g.navScroll-int(wy*2))
	}
}

func (g *game) togglePlayPause() {
	if err := g.session.Transport().TogglePlayPause(); err != nil {
		if errors.Is(err, visplay.ErrNoTrack) {
			g.setError("Choose a file first")
			return
		}
		g.setError(err.Error())
		return
	}
	if g.session.Transport().View().PlayLabel == transport.LabelPause {
		g.setStatus("Playing")
	} else {
		g.setStatus("Paused")
	}
}

func (g *game) stop() {
	if err := g.session.Transport().Stop(); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Stopped")
}

func (g *game) seek(seconds float64) {
	if err := g.session.Transport().Seek(seconds); err != nil {
		g.setError(err.Error())
	}
}

func (g *game) setVolume(slider float64) {
	slider = math.Round(clamp(slider, 0, 100))
	g.session.Transport().SetVolume(slider)
	g.setStatus(fmt.Sprintf("Volume: %d%%", int(slider)))
}

func (g *game) nextTheme() {
	p := g.session.NextTheme()
	g.setStatus("Theme: " + p.Name)
}

func (g *game) loadFile(path string) {
	if err := g.session.Load(path); err != nil {
		g.setError(err.Error())
		return
	}
	g.loadedPath = path
	g.setStatus("Loaded " + filepath.Base(path))
}

func (g *game) clickNavigator(my int, rect image.Rectangle) {
	top := rect.Min.Y + 12 + lineH*2
	row := (my - top) / lineH
	if my < top {
		return
	}
	idx := g.navScroll + row
	if idx < 0 || idx >= len(g.nav) {
		return
	}
	entry := g.nav[idx]
	if !entry.isDir {
		g.loadFile(entry.path)
		return
	}
	g.cwd = entry.path
	g.navScroll = 0
	if err := g.refreshNav(); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Directory: " + g.cwd)
}

func (g *game) refreshNav() error {
	entries, err := listDir(g.cwd)
	if err != nil {
		return err
	}
	g.nav = entries
	return nil
}

func (g *game) drawNavigator(screen *ebiten.Image, rect image.Rectangle) {
	g.text.draw(screen, "Files", rect.Min.X+8, rect.Min.Y+8, color.White)
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.text.draw(screen, shortenMiddle(g.cwd, maxChars), rect.Min.X+8, rect.Min.Y+8+lineH, color.White)

	top := rect.Min.Y + 12 + lineH*2
	maxLines := max(1, (rect.Dy()-lineH*2-18)/lineH)
	g.navScroll = min(g.navScroll, max(0, len(g.nav)-1))

	highlight := g.colors[theme.RoleSecondary]
	for i := 0; i < maxLines; i++ {
		idx := g.navScroll + i
		if idx >= len(g.nav) {
			break
		}
		entry := g.nav[idx]
		y := top + i*lineH
		if g.loadedPath != "" && !entry.isDir && samePath(entry.path, g.loadedPath) {
			fill(screen, rect.Min.X+6, y-2, rect.Dx()-12, lineH+2, highlight)
		}
		label := entry.name
		if entry.isDir && entry.name != ".." {
			label += "/"
		}
		g.text.draw(screen, shortenEnd(label, maxChars-1), rect.Min.X+10, y, color.White)
	}
}

// eqColumns splits the EQ panel into one column per band.
func eqColumns(rect image.Rectangle) [3]image.Rectangle {
	var cols [3]image.Rectangle
	innerX := rect.Min.X + 8
	bandW := (rect.Dx() - 16) / len(cols)
	for i := range cols {
		x := innerX + i*bandW
		cols[i] = image.Rect(x, rect.Min.Y+8, x+bandW-4, rect.Max.Y-8)
	}
	return cols
}

// eqGroove is the vertical travel of a band knob inside its column.
func eqGroove(col image.Rectangle) (top, height int) {
	top = col.Min.Y + lineH + 8
	return top, max(1, col.Max.Y-lineH-12-top)
}

func eqBandAt(mx int, rect image.Rectangle) (graph.Band, bool) {
	for i, col := range eqColumns(rect) {
		if mx >= col.Min.X && mx < col.Max.X {
			return graph.Bands[i], true
		}
	}
	return 0, false
}

func (g *game) dragEQ(my int, rect image.Rectangle) {
	top, h := eqGroove(eqColumns(rect)[g.dragBand])
	frac := 1 - clamp(float64(my-top)/float64(h), 0, 1)
	gain := math.Round((eqMinDB+frac*(eqMaxDB-eqMinDB))*2) / 2
	if gain == g.eqGains[g.dragBand] {
		return
	}
	if err := g.session.SetBandGain(g.dragBand, gain); err != nil {
		if errors.Is(err, graph.ErrNotInitialized) {
			g.setError("Load a file before adjusting the equalizer")
			return
		}
		g.setError(err.Error())
		return
	}
	g.eqGains[g.dragBand] = gain
	g.setStatus(fmt.Sprintf("EQ %s: %+.1f dB", bandLabels[g.dragBand], gain))
}

func (g *game) drawEQ(screen *ebiten.Image, rect image.Rectangle) {
	for i, col := range eqColumns(rect) {
		g.text.draw(screen, bandLabels[i], col.Min.X+(col.Dx()-len(bandLabels[i])*charW)/2, col.Min.Y, color.White)
		top, h := eqGroove(col)
		cx := col.Min.X + col.Dx()/2
		fill(screen, cx-2, top, 4, h, bevelDarker)
		fill(screen, col.Min.X+4, top+h/2, col.Dx()-8, 1, borderColor)

		frac := (g.eqGains[i] - eqMinDB) / (eqMaxDB - eqMinDB)
		knobY := top + h - int(frac*float64(h)) - 4
		knob := image.Rect(col.Min.X+8, knobY, col.Max.X-8, knobY+8)
		fillRect(screen, knob, g.colors[theme.RolePrimary])
		bevel(screen, knob, true)

		value := fmt.Sprintf("%+.1f", g.eqGains[i])
		g.text.draw(screen, value, col.Min.X+(col.Dx()-len(value)*charW)/2, col.Max.Y-lineH, color.White)
	}
}

func (g *game) drawInfo(screen *ebiten.Image, rect image.Rectangle, view transport.View) {
	maxChars := max(8, (rect.Dx()-16)/charW)
	title := view.Title
	if title == "" {
		title = "No file loaded"
	}
	g.text.draw(screen, shortenEnd(title, maxChars), rect.Min.X+8, rect.Min.Y+8, g.colors[theme.RoleGlow])
	g.text.draw(screen, view.DurationLabel, rect.Min.X+8, rect.Min.Y+10+lineH, color.White)
}

// drawScope paints one visualizer frame onto the persistent scope image.
// The image is recreated, and so cleared, whenever the panel is resized.
func (g *game) drawScope(screen *ebiten.Image, rect image.Rectangle) {
	inner := rect.Inset(6)
	w, h := inner.Dx(), inner.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	if g.scope.img == nil || g.scope.img.Bounds().Dx() != w || g.scope.img.Bounds().Dy() != h {
		if g.scope.img != nil {
			g.scope.img.Deallocate()
		}
		g.scope.img = ebiten.NewImage(w, h)
		g.scope.img.Fill(scopeBgColor)
	}
	g.session.Loop().Frame(&g.scope)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(inner.Min.X), float64(inner.Min.Y))
	screen.DrawImage(g.scope.img, op)
}

func progressTrack(rect image.Rectangle) image.Rectangle {
	y := rect.Min.Y + rect.Dy()/2 - 4
	return image.Rect(rect.Min.X+16+5*charW, y, rect.Max.X-16-5*charW, y+8)
}

func volumeTrack(rect image.Rectangle) image.Rectangle {
	y := rect.Min.Y + rect.Dy()/2 - 4
	return image.Rect(rect.Min.X+130, y, rect.Max.X-16, y+8)
}

func trackFrac(mx int, track image.Rectangle) float64 {
	if track.Dx() <= 0 {
		return 0
	}
	return clamp(float64(mx-track.Min.X)/float64(track.Dx()), 0, 1)
}

func (g *game) drawProgress(screen *ebiten.Image, rect image.Rectangle, view transport.View) {
	textY := rect.Min.Y + (rect.Dy()-lineH)/2
	g.text.draw(screen, view.CurrentTime, rect.Min.X+8, textY, color.White)
	g.text.draw(screen, view.TotalTime, rect.Max.X-8-len(view.TotalTime)*charW, textY, color.White)
	frac := 0.0
	if view.ProgressMax > 0 {
		frac = view.ProgressValue / view.ProgressMax
	}
	drawSlider(screen, progressTrack(rect), frac, g.colors[theme.RoleSecondary])
}

func (g *game) drawVolume(screen *ebiten.Image, rect image.Rectangle, view transport.View) {
	g.text.draw(screen, fmt.Sprintf("Vol %d", int(view.VolumeSlider)), rect.Min.X+8, rect.Min.Y+8, color.White)
	drawSlider(screen, volumeTrack(rect), view.VolumeSlider/100, g.colors[theme.RolePrimary])
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.text.draw(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6, color.White)
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func main() {
	cfg, err := config.Load("visplay", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	logger := log.New(os.Stderr, "visplay: ", log.LstdFlags)

	session, err := visplay.NewSession(
		visplay.WithSampleRate(cfg.SampleRate),
		visplay.WithBufferSize(cfg.BufferSize),
		visplay.WithInitialVolume(cfg.Volume/100),
		visplay.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	g, err := newGame(session, cfg)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("visplay")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
