// Package transport maps discrete UI actions onto a playback source and
// mirrors the source's progress back into display state.
package transport

import (
	"fmt"
	"math"
)

// Playback is the source the controller drives.
type Playback interface {
	Paused() bool
	Play() error
	Pause()
	Seek(seconds float64) error
	Position() float64
	Duration() float64
	SetVolume(v float64)
	Volume() float64
}

const (
	LabelPlay  = "Play"
	LabelPause = "Pause"
)

// View is everything the UI renders for the transport.
type View struct {
	Title         string
	DurationLabel string
	TotalTime     string
	CurrentTime   string
	PlayLabel     string
	ProgressMax   float64
	ProgressValue float64
	VolumeSlider  float64
}

type Controller struct {
	pb   Playback
	view View
}

func NewController(pb Playback) *Controller {
	return &Controller{
		pb: pb,
		view: View{
			CurrentTime:  "00:00",
			TotalTime:    "00:00",
			PlayLabel:    LabelPlay,
			VolumeSlider: 100,
		},
	}
}

func (c *Controller) View() View { return c.view }

// TogglePlayPause plays a paused source and pauses a playing one. When Play
// fails the label is left as it was.
func (c *Controller) TogglePlayPause() error {
	if c.pb.Paused() {
		if err := c.pb.Play(); err != nil {
			return err
		}
		c.view.PlayLabel = LabelPause
		return nil
	}
	c.pb.Pause()
	c.view.PlayLabel = LabelPlay
	return nil
}

// Stop pauses, rewinds to 0 and resets the position display.
func (c *Controller) Stop() error {
	c.pb.Pause()
	err := c.pb.Seek(0)
	c.view.PlayLabel = LabelPlay
	c.view.ProgressValue = 0
	c.view.CurrentTime = "00:00"
	return err
}

// Seek moves the source to the progress control's value and shows where it
// landed. There is no range check here; the source decides what an
// out-of-range seek means.
func (c *Controller) Seek(value float64) error {
	if err := c.pb.Seek(value); err != nil {
		return err
	}
	c.TimeUpdate(c.pb.Position())
	return nil
}

// SetVolume maps a 0..100 slider value linearly onto 0..1.
func (c *Controller) SetVolume(slider float64) {
	c.view.VolumeSlider = slider
	c.pb.SetVolume(slider / 100)
}

// TrackLoaded shows title for a freshly loaded, paused source.
func (c *Controller) TrackLoaded(title string) {
	c.view.Title = title
	c.view.PlayLabel = LabelPlay
	c.view.ProgressValue = 0
	c.view.CurrentTime = "00:00"
}

// MetadataLoaded sets the duration labels and the progress bound.
func (c *Controller) MetadataLoaded(duration float64) {
	d := FormatTime(duration)
	c.view.DurationLabel = "Duration: " + d
	c.view.TotalTime = d
	c.view.ProgressMax = duration
}

func (c *Controller) TimeUpdate(position float64) {
	c.view.ProgressValue = position
	c.view.CurrentTime = FormatTime(position)
}

// Ended resets the play label once the source has run out.
func (c *Controller) Ended() {
	c.view.PlayLabel = LabelPlay
}

// FormatTime renders seconds as zero-padded MM:SS, truncating fractions.
// Minutes are not wrapped into hours. Non-finite and negative input render as 00:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	mins := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
