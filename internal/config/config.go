// Package config reads player settings from flags, with defaults taken from
// the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	SampleRate   int
	Theme        int           // starting palette index
	Volume       float64       // starting volume slider value, 0-100
	BufferSize   time.Duration // output buffer; 0 keeps the backend default
	WindowWidth  int
	WindowHeight int
	InitialFile  string // optional positional argument
	Dir          string // directory shown in the file navigator
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Defaults returns the configuration with environment overrides applied.
func Defaults() Config {
	return Config{
		SampleRate:   envInt("VISPLAY_SAMPLE_RATE", 48000),
		Theme:        envInt("VISPLAY_THEME", 0),
		Volume:       envFloat("VISPLAY_VOLUME", 100),
		BufferSize:   time.Duration(envInt("VISPLAY_BUFFER_MS", 50)) * time.Millisecond,
		WindowWidth:  envInt("VISPLAY_WIDTH", 1100),
		WindowHeight: envInt("VISPLAY_HEIGHT", 720),
		Dir:          envStr("VISPLAY_DIR", ""),
	}
}

// Load parses args (without the program name). Flags override the environment.
func Load(name string, args []string, output io.Writer) (Config, error) {
	cfg := Defaults()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "output sample rate")
	fs.IntVar(&cfg.Theme, "theme", cfg.Theme, "starting theme index")
	fs.Float64Var(&cfg.Volume, "volume", cfg.Volume, "starting volume (0-100)")
	fs.DurationVar(&cfg.BufferSize, "buffer", cfg.BufferSize, "audio output buffer size")
	fs.IntVar(&cfg.WindowWidth, "width", cfg.WindowWidth, "window width")
	fs.IntVar(&cfg.WindowHeight, "height", cfg.WindowHeight, "window height")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory to browse (default: file's directory or cwd)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 1 {
		return Config{}, fmt.Errorf("expected at most one file argument, got %d", fs.NArg())
	}
	cfg.InitialFile = fs.Arg(0)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}
	if c.Volume < 0 || c.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume must be within 0-100, got %v", c.Volume))
	}
	if c.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("buffer size must not be negative, got %v", c.BufferSize))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight))
	}
	return errors.Join(errs...)
}
