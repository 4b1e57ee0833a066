// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the audio types shared by the decoder, the player
// and the command line tools.
//
// This package defines:
//   - Format: Describes a PCM stream (sample rate, channels, bit depth, signedness, byte order)
//   - Buffer: Decoded linear audio bytes tagged with their Format
//
// It also provides utilities for converting between sample representations:
//   - 16-bit ↔ 24-bit conversions
//   - int32 ↔ packed byte conversions
//
// Example:
//
//	format := audio.PCM16(16000, 1)
//	frames := len(data) / format.FrameSize()
//
//	// Convert 16-bit sample to 24-bit range
//	sample24 := audio.SampleFromInt16(sample16)
package audio
