// ABOUTME: Decoder interface definitions
// ABOUTME: Sample decoders and the frame-oriented codec adapter
package decode

// Decoder decodes audio in various formats to PCM int32 samples
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources
	Close() error
}

// FrameDecoder is a stateful speech decoder fed one compressed frame at a
// time. Decoded audio accumulates inside the decoder as 16-bit little-endian
// samples until it is drained.
type FrameDecoder interface {
	// Init binds the decoder to a stream. It must succeed before any frame
	// is submitted.
	Init(mode, sampleRate, channels int, enhanced bool) error

	// Submit decodes the first frame of a compressed packet.
	Submit(packet []byte) error

	// Repeat decodes the next frame of the packet last submitted. When the
	// packet holds no more data a concealment frame is produced instead.
	Repeat() error

	// Drain copies up to len(dst) decoded bytes into dst and returns how many
	// were copied. Bytes not copied stay queued for the next call.
	Drain(dst []byte) int

	// Close releases decoder resources
	Close() error
}

// FrameDecoderFactory creates a FrameDecoder for a new stream.
type FrameDecoderFactory func() (FrameDecoder, error)
