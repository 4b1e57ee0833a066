// ABOUTME: PCM audio encoder
// ABOUTME: Encodes int32 samples to 16-bit or 24-bit PCM bytes in either byte order
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
	order    binary.ByteOrder
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if format.BigEndian {
		order = binary.BigEndian
	}

	return &PCMEncoder{
		bitDepth: format.BitDepth,
		order:    order,
	}, nil
}

// Encode converts int32 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []int32) ([]byte, error) {
	if e.bitDepth == 24 {
		output := make([]byte, len(samples)*3)
		for i, sample := range samples {
			b := audio.SampleTo24Bit(sample)
			if e.order == binary.BigEndian {
				b[0], b[2] = b[2], b[0]
			}
			copy(output[i*3:], b[:])
		}
		return output, nil
	}

	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		e.order.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
