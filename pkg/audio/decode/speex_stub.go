//go:build !speex

// ABOUTME: libspeex stub when library not available
// ABOUTME: Provides compile-time placeholder when libspeex is not installed
package decode

import (
	"fmt"
)

// NewSpeex creates a libspeex frame decoder (stub)
func NewSpeex() (FrameDecoder, error) {
	return nil, fmt.Errorf("Speex support not enabled (build with -tags speex)")
}

// SpeexVersion returns an empty string when libspeex is not linked
func SpeexVersion() string {
	return ""
}
