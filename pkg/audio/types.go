// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and decoded buffers
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	Signed     bool
	BigEndian  bool
}

// PCM16 returns the signed 16-bit little-endian format decoders emit
func PCM16(sampleRate, channels int) Format {
	return Format{
		Codec:      "pcm",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
		Signed:     true,
	}
}

// FrameSize returns the size of one sample frame (all channels) in bytes
func (f Format) FrameSize() int {
	return f.BitDepth / 8 * f.Channels
}

// BytesPerSecond returns the data rate of the format
func (f Format) BytesPerSecond() int {
	return f.FrameSize() * f.SampleRate
}

// Buffer holds decoded linear audio bytes and their format.
// The caller owns Data once a Buffer is returned.
type Buffer struct {
	Data   []byte
	Format Format
}

// Len returns the number of bytes in the buffer
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Frames returns the number of complete sample frames in the buffer
func (b *Buffer) Frames() int {
	if b == nil || b.Format.FrameSize() == 0 {
		return 0
	}
	return len(b.Data) / b.Format.FrameSize()
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
