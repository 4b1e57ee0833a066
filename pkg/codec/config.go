// ABOUTME: Stream configuration
// ABOUTME: Byte budgets, container choice and decoder injection
package codec

import (
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
)

const (
	// DefaultStreamingBufferSize is the byte budget of Read
	DefaultStreamingBufferSize = 131072
	// DefaultMaxFileSize is the byte budget of ReadAll
	DefaultMaxFileSize = 268435456
)

// Config holds the settings a Stream is opened with
type Config struct {
	// Container selects the envelope parser. ContainerDefault uses the
	// process-wide default.
	Container Container

	// StreamingBufferSize is the approximate number of bytes Read returns
	StreamingBufferSize int

	// MaxFileSize is the approximate number of bytes ReadAll returns
	MaxFileSize int

	// NewDecoder creates the frame decoder for each session. Nil means
	// decode.NewSpeex.
	NewDecoder decode.FrameDecoderFactory

	// Enhanced turns on the decoder's perceptual enhancement
	Enhanced bool

	// StrictChecksum makes an Ogg page checksum mismatch a read error
	// instead of a logged warning
	StrictChecksum bool

	// UserAgent is sent by OpenURL when set
	UserAgent string
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		StreamingBufferSize: DefaultStreamingBufferSize,
		MaxFileSize:         DefaultMaxFileSize,
		NewDecoder:          decode.NewSpeex,
		Enhanced:            true,
	}
}

// withDefaults fills zero sizes and a nil decoder factory
func (c Config) withDefaults() Config {
	if c.StreamingBufferSize <= 0 {
		c.StreamingBufferSize = DefaultStreamingBufferSize
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.NewDecoder == nil {
		c.NewDecoder = decode.NewSpeex
	}
	return c
}
