// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM to the system device with software volume control
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, shared by every Oto output
var (
	otoOnce   sync.Once
	otoShared *oto.Context
	otoErr    error
	otoRate   int
	otoChans  int
)

// Oto output implementation using oto library
type Oto struct {
	*volume

	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{volume: newVolume()}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels, bitDepth int) error {
	// oto only supports 16-bit output
	if bitDepth != 16 {
		log.Printf("Warning: oto only supports 16-bit output, ignoring requested bitDepth=%d", bitDepth)
	}
	if o.ready {
		return fmt.Errorf("output already open")
	}

	ctx, err := sharedContext(sampleRate, channels)
	if err != nil {
		return err
	}

	// Create pipe for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()

	// Create persistent player that reads from the pipe
	o.player = ctx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)
	return nil
}

// sharedContext creates the process-wide oto context on first use. Later
// calls must ask for the same format since oto cannot be reinitialized.
func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoShared = ctx
		otoRate = sampleRate
		otoChans = channels
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate || otoChans != channels {
		return nil, fmt.Errorf("audio device already running at %dHz %dch, cannot switch to %dHz %dch",
			otoRate, otoChans, sampleRate, channels)
	}
	if err := otoShared.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume audio device: %w", err)
	}
	return otoShared, nil
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int32) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	scaled := o.apply(samples)

	output := make([]byte, len(scaled)*2)
	for i, s := range scaled {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(s)))
	}

	// Write to pipe (which feeds the persistent player)
	if _, err := o.pipeWriter.Write(output); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.ready && otoShared != nil {
		o.ready = false
		return otoShared.Suspend()
	}
	return nil
}
