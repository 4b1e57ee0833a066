// ABOUTME: Entry point for the Speex player
// ABOUTME: Plays an Ogg Speex or Speex WAV file or URL with a TUI or streaming logs
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-speex/internal/config"
	"github.com/Resonate-Protocol/resonate-speex/internal/fetch"
	"github.com/Resonate-Protocol/resonate-speex/internal/player"
	"github.com/Resonate-Protocol/resonate-speex/internal/ui"
	"github.com/Resonate-Protocol/resonate-speex/internal/version"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	cacheURLs   = flag.Bool("cache", false, "Download URLs to a local cache before playing")
	outFile     = flag.String("out", "", "Write decoded audio to this WAV file instead of the sound card")
	logFile     = flag.String("log-file", "speex-player.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	settings := config.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.spx|file.wav|url>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		if v := decode.SpeexVersion(); v != "" {
			fmt.Printf("libspeex %s\n", v)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	cfg, err := settings.Load(flag.CommandLine)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	useTUI := !(*noTUI || *streamLogs)

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		log.Printf("Starting %s", version.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *cacheURLs && config.IsURL(source) {
		cache, err := fetch.NewCache("", int64(cfg.MaxFileSize), version.UserAgent())
		if err != nil {
			log.Fatalf("Failed to create cache: %v", err)
		}
		if source, err = cache.Fetch(ctx, source); err != nil {
			log.Fatalf("Failed to download: %v", err)
		}
	}

	stream, err := cfg.Open(ctx, source, decode.NewSpeex)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", source, err)
	}

	hdr := stream.Header()
	format := stream.Format()
	log.Printf("[%s] %s: %s, %s, %dHz, %d channel(s), %d frame(s) per packet",
		stream.ID(), source, stream.Container(), hdr.Mode, format.SampleRate, format.Channels, hdr.FramesPerPacket)

	var out output.Output
	if *outFile != "" {
		out = output.NewWAVFile(*outFile)
	} else {
		out = output.NewOto()
	}

	p := player.New(stream, out, cfg.OutputRate)
	if err := p.Start(); err != nil {
		_ = stream.Close()
		log.Fatalf("Failed to start playback: %v", err)
	}

	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl

	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg, err = ui.Run(volumeCtrl)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	outputRate := cfg.OutputRate
	if outputRate == 0 {
		outputRate = format.SampleRate
	}
	updateTUI(ui.StatusMsg{
		Source:          source,
		Container:       stream.Container().String(),
		StreamID:        stream.ID(),
		Mode:            hdr.Mode.String(),
		FramesPerPacket: hdr.FramesPerPacket,
		SampleRate:      format.SampleRate,
		Channels:        format.Channels,
		BitDepth:        format.BitDepth,
		OutputRate:      outputRate,
		State:           p.State().String(),
	})

	if volumeCtrl != nil {
		if vc, ok := out.(output.VolumeControl); ok {
			go handleVolumeControl(vc, volumeCtrl)
		}
		go statsUpdateLoop(ctx, p, stream, updateTUI)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quit chan ui.QuitMsg
	if volumeCtrl != nil {
		quit = volumeCtrl.Quit
	}

	select {
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case <-p.Done():
		log.Printf("Playback %s", p.State())
		if tuiProg != nil {
			// Leave the final state on screen until the user quits
			updateTUI(playbackStatus(p, stream))
			select {
			case <-quit:
			case <-sigChan:
			}
		}
	}

	p.Stop()
	if tuiProg != nil {
		tuiProg.Quit()
	}

	if err := p.Err(); err != nil {
		log.Printf("Playback error: %v", err)
	}
	stats := p.Stats()
	log.Printf("[%s] Player stopped: %d buffers played, %d samples, %d pages, %d checksum errors",
		stream.ID(), stats.Played, stats.Samples, stats.Stream.Pages, stats.Stream.ChecksumErrors)
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(vc output.VolumeControl, volumeCtrl *ui.VolumeControl) {
	for vol := range volumeCtrl.Changes {
		log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
		vc.SetVolume(vol.Volume)
		vc.SetMuted(vol.Muted)
	}
}

// statsUpdateLoop periodically updates TUI with playback statistics
func statsUpdateLoop(ctx context.Context, p *player.Player, stream *codec.Stream, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.Done():
			return
		case <-ticker.C:
			updateTUI(playbackStatus(p, stream))
		}
	}
}

func playbackStatus(p *player.Player, stream *codec.Stream) ui.StatusMsg {
	stats := p.Stats()
	eos := stream.EndOfStream()
	return ui.StatusMsg{
		State:       p.State().String(),
		EndOfStream: &eos,
		Stats: &ui.StatsUpdate{
			Decoded:        stats.Decoded,
			Played:         stats.Played,
			Bytes:          stats.Stream.Bytes,
			Pages:          stats.Stream.Pages,
			ChecksumErrors: stats.Stream.ChecksumErrors,
			QueueDepth:     stats.QueueDepth,
		},
	}
}
