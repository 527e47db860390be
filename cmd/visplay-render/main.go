package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cbegin/visplay-go"
)

func main() {
	var (
		in         = flag.String("in", "", "input audio file (mp3, wav, flac, ogg)")
		out        = flag.String("out", "out.wav", "output wav path")
		sampleRate = flag.Int("sample-rate", 0, "output sample rate (0 = keep input rate)")
		low        = flag.Float64("low", 0, "low shelf gain in dB")
		mid        = flag.Float64("mid", 0, "mid peaking gain in dB")
		high       = flag.Float64("high", 0, "high shelf gain in dB")
		volume     = flag.Float64("volume", 1.0, "linear volume scalar")
		seconds    = flag.Float64("seconds", 0, "render at most this many seconds (0 = whole track)")
		spectrum   = flag.Bool("spectrum", false, "print the final analyser frame")
	)
	flag.Parse()

	if strings.TrimSpace(*in) == "" {
		if flag.NArg() != 1 {
			log.Fatal("usage: visplay-render [flags] -in FILE")
		}
		*in = flag.Arg(0)
	}

	opts := visplay.DefaultRenderOptions()
	opts.SampleRate = *sampleRate
	opts.Gains = [3]float64{*low, *mid, *high}
	opts.Volume = *volume
	opts.Seconds = *seconds
	res, err := visplay.RenderFile(*in, *out, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s: %d frames @ %d Hz (%.2fs)\n", *out, res.Frames, res.SampleRate, float64(res.Frames)/float64(res.SampleRate))
	if *spectrum {
		fmt.Println(formatSpectrum(res.Spectrum))
	}
}

func formatSpectrum(bins []byte) string {
	var b strings.Builder
	for i, v := range bins {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	return b.String()
}
