// ABOUTME: Stream errors
// ABOUTME: Sentinels plus typed open and read failures
package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned when reading a stream that was never opened
	// successfully or has been closed
	ErrNotOpen = errors.New("stream not open")

	// ErrStreamFailed is returned when reading a stream after a previous
	// read failed. The stream must be closed and reopened.
	ErrStreamFailed = errors.New("stream failed")

	// ErrMissingHeader means the first Ogg page held no Speex header
	ErrMissingHeader = errors.New("no speex header in first page")
)

// OpenError reports why a stream could not be opened
type OpenError struct {
	Container Container
	Err       error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %v stream: %v", e.Container, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// ReadError reports a failure while decoding audio packets
type ReadError struct {
	Packet int
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read packet %d: %v", e.Packet, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
