// ABOUTME: Speex header parsing
// ABOUTME: Extracts rate, mode, channels and frames per packet
package speex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of a Speex identification header in bytes.
const HeaderSize = 80

// Signature opens every Speex header.
const Signature = "Speex   "

const (
	versionOffset         = 8
	versionLen            = 20
	versionIDOffset       = 28
	headerSizeOffset      = 32
	rateOffset            = 36
	modeOffset            = 40
	modeVersionOffset     = 44
	channelsOffset        = 48
	bitrateOffset         = 52
	frameSizeOffset       = 56
	vbrOffset             = 60
	framesPerPacketOffset = 64
	extraHeadersOffset    = 68
)

var (
	// ErrHeaderSize means the packet is not exactly HeaderSize bytes long.
	ErrHeaderSize = errors.New("speex: header must be 80 bytes")

	// ErrNotSpeexHeader means the packet does not carry the Speex signature.
	ErrNotSpeexHeader = errors.New("speex: missing header signature")

	// ErrInvalidMode means the header declares a mode other than 0, 1 or 2.
	ErrInvalidMode = errors.New("speex: invalid mode")
)

// Mode selects the Speex band.
type Mode int

const (
	ModeNarrowband Mode = iota
	ModeWideband
	ModeUltraWideband
)

func (m Mode) String() string {
	switch m {
	case ModeNarrowband:
		return "narrowband"
	case ModeWideband:
		return "wideband"
	case ModeUltraWideband:
		return "ultra-wideband"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Header is a decoded Speex identification header.
type Header struct {
	Version         string
	VersionID       int
	SampleRate      int
	Mode            Mode
	ModeVersion     int
	Channels        int
	Bitrate         int
	FrameSize       int
	VBR             bool
	FramesPerPacket int
	ExtraHeaders    int
}

// IsHeader reports whether packet starts with the Speex signature.
func IsHeader(packet []byte) bool {
	return len(packet) >= len(Signature) && string(packet[:len(Signature)]) == Signature
}

// ParseHeader decodes an identification header. Packets that are not 80
// bytes long return ErrHeaderSize and packets without the signature return
// ErrNotSpeexHeader, so callers can skip them and keep looking.
func ParseHeader(packet []byte) (*Header, error) {
	if len(packet) != HeaderSize {
		return nil, ErrHeaderSize
	}
	if !IsHeader(packet) {
		return nil, ErrNotSpeexHeader
	}

	h := &Header{
		Version:         string(bytes.TrimRight(packet[versionOffset:versionOffset+versionLen], "\x00")),
		VersionID:       readInt(packet, versionIDOffset),
		SampleRate:      readInt(packet, rateOffset),
		Mode:            Mode(packet[modeOffset]),
		ModeVersion:     readInt(packet, modeVersionOffset),
		Channels:        readInt(packet, channelsOffset),
		Bitrate:         readInt(packet, bitrateOffset),
		FrameSize:       readInt(packet, frameSizeOffset),
		VBR:             readInt(packet, vbrOffset) != 0,
		FramesPerPacket: readInt(packet, framesPerPacketOffset),
		ExtraHeaders:    readInt(packet, extraHeadersOffset),
	}

	if h.Mode > ModeUltraWideband {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(h.Mode))
	}
	if h.FramesPerPacket < 1 {
		h.FramesPerPacket = 1
	}

	return h, nil
}

// Marshal encodes the header into its 80-byte wire form.
func (h *Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	copy(b, Signature)
	copy(b[versionOffset:versionOffset+versionLen], h.Version)
	putInt(b, versionIDOffset, h.VersionID)
	putInt(b, headerSizeOffset, HeaderSize)
	putInt(b, rateOffset, h.SampleRate)
	putInt(b, modeOffset, int(h.Mode))
	putInt(b, modeVersionOffset, h.ModeVersion)
	putInt(b, channelsOffset, h.Channels)
	putInt(b, bitrateOffset, h.Bitrate)
	putInt(b, frameSizeOffset, h.FrameSize)
	if h.VBR {
		putInt(b, vbrOffset, 1)
	}
	putInt(b, framesPerPacketOffset, h.FramesPerPacket)
	putInt(b, extraHeadersOffset, h.ExtraHeaders)
	return b
}

func readInt(b []byte, offset int) int {
	return int(int32(binary.LittleEndian.Uint32(b[offset : offset+4])))
}

func putInt(b []byte, offset, v int) {
	binary.LittleEndian.PutUint32(b[offset:offset+4], uint32(int32(v)))
}
