// ABOUTME: Raw PCM output
// ABOUTME: Encodes samples as headerless PCM bytes onto any writer
package output

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/encode"
)

// Raw writes headerless PCM to a writer
type Raw struct {
	*volume

	w         io.Writer
	bigEndian bool
	enc       encode.Encoder
	written   int64
}

// NewRaw creates a raw output on w. The caller keeps ownership of w.
func NewRaw(w io.Writer, bigEndian bool) *Raw {
	return &Raw{volume: newVolume(), w: w, bigEndian: bigEndian}
}

// Open selects the sample encoding
func (r *Raw) Open(sampleRate, channels, bitDepth int) error {
	format := audio.PCM16(sampleRate, channels)
	format.BitDepth = bitDepth
	format.BigEndian = r.bigEndian

	enc, err := encode.NewPCM(format)
	if err != nil {
		return err
	}
	r.enc = enc
	return nil
}

// Write encodes and writes samples
func (r *Raw) Write(samples []int32) error {
	if r.enc == nil {
		return fmt.Errorf("output not initialized")
	}

	data, err := r.enc.Encode(r.apply(samples))
	if err != nil {
		return err
	}
	n, err := r.w.Write(data)
	r.written += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// BytesWritten returns the number of bytes written so far
func (r *Raw) BytesWritten() int64 {
	return r.written
}

// Close releases the encoder
func (r *Raw) Close() error {
	if r.enc == nil {
		return nil
	}
	err := r.enc.Close()
	r.enc = nil
	return err
}
