// ABOUTME: PCM sample decoder
// ABOUTME: Converts decoded 16-bit or 24-bit PCM bytes to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	bitDepth int
	order    binary.ByteOrder
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	if !format.Signed {
		return nil, fmt.Errorf("unsigned PCM is not supported")
	}

	var order binary.ByteOrder = binary.LittleEndian
	if format.BigEndian {
		order = binary.BigEndian
	}

	return &PCMDecoder{
		bitDepth: format.BitDepth,
		order:    order,
	}, nil
}

// Decode converts PCM bytes to int32 samples. A trailing partial sample is
// ignored.
func (d *PCMDecoder) Decode(data []byte) ([]int32, error) {
	if d.bitDepth == 24 {
		numSamples := len(data) / 3
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			if d.order == binary.BigEndian {
				b[0], b[2] = b[2], b[0]
			}
			samples[i] = audio.SampleFrom24Bit(b)
		}
		return samples, nil
	}

	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(d.order.Uint16(data[i*2:])))
	}
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
