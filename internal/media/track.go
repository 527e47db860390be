// Package media decodes audio files and exposes them as playback sources.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

var ErrUnsupportedFormat = errors.New("media: unsupported format")

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	},
	".ogg": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".oga": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

// Supported reports whether Open has a decoder for path's extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Track is one decoded audio file.
type Track struct {
	Path   string
	Title  string
	Format beep.Format

	streamer beep.StreamSeekCloser
	file     io.Closer
}

// TitleFromPath strips the directory and the last extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open decodes the headers of path. The duration is known when Open returns.
func Open(path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &Track{
		Path:     path,
		Title:    TitleFromPath(path),
		Format:   format,
		streamer: streamer,
		file:     f,
	}, nil
}

// Len returns the track length in frames at the track's own sample rate.
func (t *Track) Len() int { return t.streamer.Len() }

// Seconds returns the duration as a float, the unit the transport works in.
func (t *Track) Seconds() float64 {
	if t.Format.SampleRate <= 0 {
		return 0
	}
	return float64(t.streamer.Len()) / float64(t.Format.SampleRate)
}

func (t *Track) Close() error {
	err := t.streamer.Close()
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
	return err
}
