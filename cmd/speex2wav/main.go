// ABOUTME: Speex to PCM converter
// ABOUTME: Decodes an Ogg Speex or Speex WAV source into a PCM WAV or raw file
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-speex/internal/config"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/resample"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
)

var (
	outPath   = flag.String("o", "", "Output path (default: input name with .wav or .raw, \"-\" for stdout in raw mode)")
	raw       = flag.Bool("raw", false, "Write headerless PCM instead of WAV")
	bigEndian = flag.Bool("be", false, "Big-endian samples in raw mode")
	whole     = flag.Bool("whole", false, "Decode in a single read bounded by -max-size instead of streaming")
	quiet     = flag.Bool("q", false, "Only log errors")
)

func main() {
	settings := config.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.spx|file.wav|url>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	cfg, err := settings.Load(flag.CommandLine)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dest := *outPath
	if dest == "" {
		dest = defaultOutput(source, *raw)
	}

	stream, err := cfg.Open(context.Background(), source, decode.NewSpeex)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", source, err)
	}
	defer func() { _ = stream.Close() }()

	var out output.Output
	switch {
	case !*raw:
		out = output.NewWAVFile(dest)
	case dest == "-":
		out = output.NewRaw(os.Stdout, *bigEndian)
	default:
		f, err := os.Create(dest)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", dest, err)
		}
		defer func() { _ = f.Close() }()
		out = output.NewRaw(f, *bigEndian)
	}

	n, err := convert(stream, out, cfg.OutputRate, *whole)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	if !*quiet {
		stats := stream.Stats()
		log.Printf("[%s] Wrote %d samples to %s (%d packets, %d pages, %d checksum errors)",
			stream.ID(), n, dest, stats.Packets, stats.Pages, stats.ChecksumErrors)
	}
}

// defaultOutput swaps the source extension for .wav or .raw without
// overwriting the source
func defaultOutput(source string, raw bool) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == "/" {
		name = "out"
	}
	ext := ".wav"
	if raw {
		ext = ".raw"
	}
	if name+ext == base {
		name += "-pcm"
	}
	return name + ext
}

// convert decodes the open stream into out and returns the number of samples
// written. A non-zero outputRate resamples on the way. The output is opened
// and closed here.
func convert(stream *codec.Stream, out output.Output, outputRate int, whole bool) (int64, error) {
	format := stream.Format()
	pcm, err := decode.NewPCM(format)
	if err != nil {
		return 0, err
	}
	defer func() { _ = pcm.Close() }()

	rate := format.SampleRate
	var rs *resample.Resampler
	if outputRate > 0 && outputRate != rate {
		rs = resample.New(rate, outputRate, format.Channels)
		rate = outputRate
	}

	if err := out.Open(rate, format.Channels, format.BitDepth); err != nil {
		return 0, fmt.Errorf("failed to open output: %w", err)
	}

	var written int64
	write := func(data []byte) error {
		samples, err := pcm.Decode(data)
		if err != nil {
			return err
		}
		if rs != nil {
			buf := make([]int32, rs.MaxOutput(len(samples)))
			samples = buf[:rs.Resample(samples, buf)]
		}
		if err := out.Write(samples); err != nil {
			return err
		}
		written += int64(len(samples))
		return nil
	}

	err = func() error {
		if whole {
			buf, err := stream.ReadAll()
			if err != nil || buf == nil {
				return err
			}
			if !stream.EndOfStream() {
				log.Printf("[%s] Output truncated at %d bytes, raise -max-size to decode the rest", stream.ID(), buf.Len())
			}
			return write(buf.Data)
		}

		for {
			buf, err := stream.Read()
			if err != nil {
				return err
			}
			if buf == nil {
				return nil
			}
			if err := write(buf.Data); err != nil {
				return err
			}
		}
	}()

	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	return written, err
}
