// ABOUTME: Audio output package for playing or storing decoded audio
// ABOUTME: Provides the Output interface with oto, WAV file and raw PCM sinks
// Package output provides audio sinks for decoded samples.
//
// Oto plays through the system audio device. WAVFile writes a 16-bit PCM
// WAVE file and Raw writes headerless PCM to any writer. Samples are int32
// values in 24-bit range, as produced by decode.NewPCM.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(16000, 1, 16)
//	err = out.Write(samples)
package output
