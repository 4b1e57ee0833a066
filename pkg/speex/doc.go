// ABOUTME: Speex identification header
// ABOUTME: Parses and builds the 80-byte header that opens every Speex stream
// Package speex decodes the Speex identification header.
//
// The same 80-byte structure appears as the first Ogg packet of a .spx file
// and embedded in the format chunk of a Speex WAVE file.
//
// Example:
//
//	h, err := speex.ParseHeader(packet)
//	if errors.Is(err, speex.ErrNotSpeexHeader) {
//	    // not a header packet
//	}
//	fmt.Println(h.SampleRate, h.Channels, h.Mode)
package speex
