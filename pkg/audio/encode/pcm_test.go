// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests bit depths, byte order and symmetry with the PCM decoder
package encode

import (
	"bytes"
	"testing"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name    string
		codec   string
		depth   int
		wantErr bool
	}{
		{"16-bit", "pcm", 16, false},
		{"24-bit", "pcm", 24, false},
		{"wrong codec", "speex", 16, true},
		{"unsupported depth", "pcm", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := audio.PCM16(16000, 1)
			format.Codec = tt.codec
			format.BitDepth = tt.depth

			enc, err := NewPCM(format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && enc == nil {
				t.Error("expected encoder, got nil")
			}
		})
	}
}

func TestPCMEncode(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		bigEndian bool
		sample    int32
		expected  []byte
	}{
		{"16-bit little-endian", 16, false, 0x0102 << 8, []byte{0x02, 0x01}},
		{"16-bit big-endian", 16, true, 0x0102 << 8, []byte{0x01, 0x02}},
		{"16-bit negative", 16, false, -1 << 8, []byte{0xFF, 0xFF}},
		{"24-bit little-endian", 24, false, 0x010203, []byte{0x03, 0x02, 0x01}},
		{"24-bit big-endian", 24, true, 0x010203, []byte{0x01, 0x02, 0x03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := audio.PCM16(16000, 1)
			format.BitDepth = tt.depth
			format.BigEndian = tt.bigEndian

			enc, err := NewPCM(format)
			if err != nil {
				t.Fatalf("failed to create encoder: %v", err)
			}

			out, err := enc.Encode([]int32{tt.sample})
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if !bytes.Equal(out, tt.expected) {
				t.Errorf("expected %x, got %x", tt.expected, out)
			}
		})
	}
}

func TestPCMEncodeMatchesDecoder(t *testing.T) {
	format := audio.PCM16(8000, 2)
	raw := []byte{0x10, 0x00, 0xF0, 0xFF, 0xFF, 0x7F, 0x00, 0x80}

	dec, err := decode.NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	samples, err := dec.Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	enc, err := NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	out, err := enc.Encode(samples)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if !bytes.Equal(out, raw) {
		t.Errorf("expected %x, got %x", raw, out)
	}
}
