// ABOUTME: Ogg demuxer errors
// ABOUTME: Sentinel and typed errors returned while reading pages
package ogg

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCapture means a page did not start with "OggS".
	ErrMissingCapture = errors.New("ogg: missing capture pattern")

	// ErrSegmentTooLarge means the segment table holds a lacing value of
	// 255. Packets spanning several segments are not supported.
	ErrSegmentTooLarge = errors.New("ogg: unsupported segment size 255")

	// ErrPacketTooLarge is returned when building a page from a packet that
	// does not fit in one segment.
	ErrPacketTooLarge = errors.New("ogg: packet larger than one segment")
)

// ChecksumError reports a page whose stored checksum does not match the one
// computed over its bytes.
type ChecksumError struct {
	Sequence uint32
	Stored   uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("ogg: checksum mismatch on page %d: stored %08x, computed %08x",
		e.Sequence, e.Stored, e.Computed)
}
