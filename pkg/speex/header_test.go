// ABOUTME: Tests for Speex header parsing
// ABOUTME: Covers field offsets, signature checks and normalisation
package speex

import (
	"errors"
	"testing"
)

func TestParseHeader(t *testing.T) {
	in := Header{
		Version:         "1.2rc1",
		VersionID:       1,
		SampleRate:      16000,
		Mode:            ModeWideband,
		ModeVersion:     4,
		Channels:        2,
		Bitrate:         -1,
		FrameSize:       320,
		VBR:             true,
		FramesPerPacket: 3,
	}

	h, err := ParseHeader(in.Marshal())
	if err != nil {
		t.Fatalf("failed to parse header: %v", err)
	}

	if *h != in {
		t.Errorf("expected %+v, got %+v", in, *h)
	}
}

func TestParseHeaderFieldOffsets(t *testing.T) {
	b := make([]byte, HeaderSize)
	copy(b, Signature)
	b[36], b[37] = 0x40, 0x1F // 8000
	b[40] = 2
	b[48] = 1
	b[64] = 2

	h, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("failed to parse header: %v", err)
	}
	if h.SampleRate != 8000 {
		t.Errorf("expected sample rate 8000, got %d", h.SampleRate)
	}
	if h.Mode != ModeUltraWideband {
		t.Errorf("expected ultra-wideband, got %v", h.Mode)
	}
	if h.Channels != 1 {
		t.Errorf("expected 1 channel, got %d", h.Channels)
	}
	if h.FramesPerPacket != 2 {
		t.Errorf("expected 2 frames per packet, got %d", h.FramesPerPacket)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	valid := (&Header{SampleRate: 8000, Channels: 1, FramesPerPacket: 1}).Marshal()

	wrongSig := append([]byte(nil), valid...)
	copy(wrongSig, "Vorbis  ")

	badMode := append([]byte(nil), valid...)
	badMode[modeOffset] = 7

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"short", valid[:79], ErrHeaderSize},
		{"long", append(append([]byte(nil), valid...), 0), ErrHeaderSize},
		{"wrong signature", wrongSig, ErrNotSpeexHeader},
		{"bad mode", badMode, ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if h != nil {
				t.Error("expected nil header on error")
			}
		})
	}
}

func TestParseHeaderFramesPerPacketFloor(t *testing.T) {
	b := (&Header{SampleRate: 8000, Channels: 1, FramesPerPacket: 0}).Marshal()

	h, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("failed to parse header: %v", err)
	}
	if h.FramesPerPacket != 1 {
		t.Errorf("expected frames per packet to be raised to 1, got %d", h.FramesPerPacket)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeNarrowband, "narrowband"},
		{ModeWideband, "wideband"},
		{ModeUltraWideband, "ultra-wideband"},
		{Mode(9), "Mode(9)"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
