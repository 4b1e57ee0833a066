// ABOUTME: Scripted FrameDecoder for tests
// ABOUTME: Emits a fixed number of bytes per decoded frame and records calls
package decodetest

import (
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
)

// Decoder is a FrameDecoder that produces BytesPerFrame bytes for every
// submitted or repeated frame. Each frame's bytes hold the frame's index
// (modulo 256) so callers can check ordering.
type Decoder struct {
	BytesPerFrame int

	// Errors returned by the matching calls when set
	InitErr   error
	SubmitErr error

	Mode       int
	SampleRate int
	Channels   int
	Enhanced   bool

	Inits     int
	Submitted [][]byte
	Repeats   int
	Closes    int

	frames  int
	pending []byte
}

// New returns a Decoder emitting bytesPerFrame bytes per frame
func New(bytesPerFrame int) *Decoder {
	return &Decoder{BytesPerFrame: bytesPerFrame}
}

// Factory returns a factory that always hands out d
func (d *Decoder) Factory() decode.FrameDecoderFactory {
	return func() (decode.FrameDecoder, error) {
		return d, nil
	}
}

// Init records the stream parameters
func (d *Decoder) Init(mode, sampleRate, channels int, enhanced bool) error {
	d.Inits++
	if d.InitErr != nil {
		return d.InitErr
	}
	d.Mode = mode
	d.SampleRate = sampleRate
	d.Channels = channels
	d.Enhanced = enhanced
	return nil
}

// Submit records the packet and emits one frame
func (d *Decoder) Submit(packet []byte) error {
	if d.SubmitErr != nil {
		return d.SubmitErr
	}
	d.Submitted = append(d.Submitted, append([]byte(nil), packet...))
	d.emit()
	return nil
}

// Repeat emits one frame
func (d *Decoder) Repeat() error {
	d.Repeats++
	d.emit()
	return nil
}

func (d *Decoder) emit() {
	for i := 0; i < d.BytesPerFrame; i++ {
		d.pending = append(d.pending, byte(d.frames))
	}
	d.frames++
}

// Drain copies queued bytes into dst
func (d *Decoder) Drain(dst []byte) int {
	n := copy(dst, d.pending)
	d.pending = d.pending[n:]
	return n
}

// Frames returns the number of frames emitted so far
func (d *Decoder) Frames() int {
	return d.frames
}

// Close records the call
func (d *Decoder) Close() error {
	d.Closes++
	return nil
}
