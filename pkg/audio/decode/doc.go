// ABOUTME: Audio decoder package
// ABOUTME: Provides the Speex frame decoder and the PCM sample decoder
// Package decode provides audio decoders.
//
// FrameDecoder is the codec adapter driven by the container demuxers: it is
// initialised from a Speex header, fed one compressed packet at a time and
// drained of 16-bit PCM bytes. NewSpeex returns the libspeex-backed
// implementation, available when built with -tags speex.
//
// Decoder converts PCM bytes into int32 samples in 24-bit range for the
// output and resampling stages.
//
// Example:
//
//	dec, err := decode.NewSpeex()
//	err = dec.Init(0, 8000, 1, true)
//	err = dec.Submit(packet)
//	n := dec.Drain(buf)
package decode
