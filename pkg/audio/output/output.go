// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for playback devices and file sinks
package output

// Output represents an audio sink fed with decoded samples
type Output interface {
	// Open prepares the sink for the given format
	Open(sampleRate, channels, bitDepth int) error

	// Write outputs interleaved samples (blocks until written)
	Write(samples []int32) error

	// Close releases output resources
	Close() error
}

// VolumeControl is implemented by outputs with software volume
type VolumeControl interface {
	SetVolume(volume int)
	SetMuted(muted bool)
	GetVolume() int
	IsMuted() bool
}
