// ABOUTME: Speex stream inspector
// ABOUTME: Prints container, header fields and page statistics of Speex files
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/Resonate-Protocol/resonate-speex/internal/config"
	"github.com/Resonate-Protocol/resonate-speex/internal/fetch"
	"github.com/Resonate-Protocol/resonate-speex/internal/version"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
	"github.com/Resonate-Protocol/resonate-speex/pkg/container/ogg"
	"github.com/Resonate-Protocol/resonate-speex/pkg/container/wav"
	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
)

var decodeAll = flag.Bool("decode", false, "Also decode the whole stream with libspeex and report the PCM size")

// report describes one inspected source
type report struct {
	Container codec.Container
	Header    *speex.Header

	// Ogg
	Pages          int
	ChecksumErrors int
	CommentSize    int
	Granule        uint64

	// WAVE
	BytesPerPacket int
	DataSize       int
	TrailingBytes  int

	Packets int
}

// Duration estimates the playing time from the final granule position or
// the packet count
func (r *report) Duration() time.Duration {
	if r.Header == nil || r.Header.SampleRate <= 0 {
		return 0
	}
	samples := r.Granule
	if samples == 0 {
		samples = uint64(r.Packets * r.Header.FramesPerPacket * r.Header.FrameSize)
	}
	return time.Duration(samples) * time.Second / time.Duration(r.Header.SampleRate)
}

func main() {
	settings := config.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.spx|file.wav|url>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := settings.Load(flag.CommandLine)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if v := decode.SpeexVersion(); v != "" {
		fmt.Printf("%s (libspeex %s)\n\n", version.String(), v)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := inspectFile(path, cfg); err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspectFile(path string, cfg config.Config) error {
	if config.IsURL(path) {
		cache, err := fetch.NewCache("", int64(cfg.MaxFileSize), version.UserAgent())
		if err != nil {
			return err
		}
		local, err := cache.Fetch(context.Background(), path)
		if err != nil {
			return err
		}
		if cfg.Container == codec.ContainerDefault {
			cfg.Container, _ = codec.ContainerForPath(local)
		}
		path = local
	}

	c := cfg.Container
	if c == codec.ContainerDefault {
		var err error
		if c, err = codec.ContainerForPath(path); err != nil {
			c = codec.DefaultContainer()
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	rep, err := inspect(bufio.NewReader(f), c, cfg.StrictChecksum)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", path)
	printReport(tw, rep)

	if *decodeAll {
		n, err := decodeFile(path, cfg)
		if err != nil {
			fmt.Fprintf(tw, "Decode:\tfailed after %d bytes: %v\n", n, err)
		} else {
			fmt.Fprintf(tw, "Decoded PCM:\t%d bytes\n", n)
		}
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func printReport(w io.Writer, r *report) {
	h := r.Header
	fmt.Fprintf(w, "Container:\t%s\n", r.Container)
	fmt.Fprintf(w, "Encoder:\t%s (version id %d)\n", h.Version, h.VersionID)
	fmt.Fprintf(w, "Mode:\t%s (bitstream %d)\n", h.Mode, h.ModeVersion)
	fmt.Fprintf(w, "Sample rate:\t%d Hz\n", h.SampleRate)
	fmt.Fprintf(w, "Channels:\t%d\n", h.Channels)
	if h.Bitrate > 0 {
		fmt.Fprintf(w, "Bitrate:\t%d bps\n", h.Bitrate)
	} else {
		fmt.Fprintf(w, "Bitrate:\tunspecified\n")
	}
	fmt.Fprintf(w, "VBR:\t%v\n", h.VBR)
	fmt.Fprintf(w, "Frame size:\t%d samples\n", h.FrameSize)
	fmt.Fprintf(w, "Frames per packet:\t%d\n", h.FramesPerPacket)
	fmt.Fprintf(w, "Extra headers:\t%d\n", h.ExtraHeaders)

	switch r.Container {
	case codec.ContainerOgg:
		fmt.Fprintf(w, "Pages:\t%d\n", r.Pages)
		fmt.Fprintf(w, "Checksum errors:\t%d\n", r.ChecksumErrors)
		fmt.Fprintf(w, "Comment packet:\t%d bytes\n", r.CommentSize)
		fmt.Fprintf(w, "Final granule:\t%d\n", r.Granule)
	case codec.ContainerWAV:
		fmt.Fprintf(w, "Bytes per packet:\t%d\n", r.BytesPerPacket)
		fmt.Fprintf(w, "Data chunk:\t%d bytes\n", r.DataSize)
		if r.TrailingBytes > 0 {
			fmt.Fprintf(w, "Trailing bytes:\t%d\n", r.TrailingBytes)
		}
	}
	fmt.Fprintf(w, "Audio packets:\t%d\n", r.Packets)
	fmt.Fprintf(w, "Duration:\t%s\n", r.Duration().Round(time.Millisecond))
}

// inspect walks the whole source without decoding any audio
func inspect(r io.Reader, c codec.Container, strict bool) (*report, error) {
	switch c {
	case codec.ContainerOgg:
		return inspectOgg(r, strict)
	case codec.ContainerWAV:
		return inspectWAV(r)
	default:
		return nil, fmt.Errorf("unsupported container %s", c)
	}
}

func inspectOgg(r io.Reader, strict bool) (*report, error) {
	d := ogg.NewDemuxer(r)
	d.Strict = strict
	rep := &report{Container: codec.ContainerOgg}

	packet := 0
	for {
		seg, err := d.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case rep.Header == nil:
			if d.Pages() > 1 {
				return nil, codec.ErrMissingHeader
			}
			h, err := speex.ParseHeader(seg)
			if err != nil {
				continue
			}
			rep.Header = h
			packet = 1
		case packet == 1:
			rep.CommentSize = len(seg)
			packet++
		default:
			rep.Packets++
			packet++
		}
		rep.Granule = d.Page().GranulePos
	}

	if rep.Header == nil {
		return nil, codec.ErrMissingHeader
	}
	rep.Pages = d.Pages()
	rep.ChecksumErrors = d.ChecksumErrors()
	return rep, nil
}

func inspectWAV(r io.Reader) (*report, error) {
	h, data, err := wav.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	if h.DataSize > 0 {
		data = io.LimitReader(data, int64(h.DataSize))
	}
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return nil, err
	}

	return &report{
		Container:      codec.ContainerWAV,
		Header:         h.Speex,
		BytesPerPacket: h.BytesPerPacket,
		DataSize:       int(n),
		Packets:        int(n) / h.BytesPerPacket,
		TrailingBytes:  int(n) % h.BytesPerPacket,
	}, nil
}

// decodeFile decodes the file through the streaming driver and returns the
// number of PCM bytes produced
func decodeFile(path string, cfg config.Config) (int64, error) {
	s, err := cfg.Open(context.Background(), path, decode.NewSpeex)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()

	var total int64
	for {
		buf, err := s.Read()
		if err != nil {
			return total, err
		}
		if buf == nil {
			return total, nil
		}
		total += int64(buf.Len())
	}
}
