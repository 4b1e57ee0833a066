// ABOUTME: Audio encoder package for encoding samples to PCM bytes
// ABOUTME: Provides the Encoder interface and the PCM implementation
// Package encode converts int32 samples back to linear PCM bytes.
//
// Samples are expected in the 24-bit range produced by decode.NewPCM. The
// output bit depth and byte order come from the audio.Format.
//
// Example:
//
//	encoder, err := encode.NewPCM(audio.PCM16(16000, 1))
//	data, err := encoder.Encode(samples)
package encode
