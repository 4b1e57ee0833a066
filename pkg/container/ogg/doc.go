// ABOUTME: Ogg page demuxer for Speex streams
// ABOUTME: Reads page headers and segment tables and verifies page checksums
// Package ogg reads Speex packets out of an Ogg bitstream one segment at a time.
//
// Only the framing Speex files actually use is supported: every packet fits in
// a single segment of at most 254 bytes. A lacing value of 255 (a packet that
// continues into the next segment or page) is rejected with ErrSegmentTooLarge.
//
// The Demuxer keeps its position inside the current page between calls, so a
// caller can stop after any segment and resume later without re-reading the
// page:
//
//	d := ogg.NewDemuxer(r)
//	for {
//	    seg, err := d.NextSegment()
//	    if err == io.EOF {
//	        break
//	    }
//	    // seg is valid until the next call
//	}
package ogg
