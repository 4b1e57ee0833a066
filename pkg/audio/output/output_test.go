// ABOUTME: Audio output tests
// ABOUTME: Verifies interface conformance, volume scaling and WAV file output
package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	"github.com/go-audio/wav"
)

func TestOutputsImplementInterfaces(t *testing.T) {
	var _ Output = (*Oto)(nil)
	var _ Output = (*WAVFile)(nil)
	var _ VolumeControl = (*Oto)(nil)
	var _ VolumeControl = (*WAVFile)(nil)
	var _ Output = (*Raw)(nil)
}

func TestNewOto(t *testing.T) {
	out := NewOto()
	if out.GetVolume() != 100 {
		t.Errorf("expected default volume 100, got %d", out.GetVolume())
	}
	if err := out.Write([]int32{1}); err == nil {
		t.Error("expected error writing to unopened output")
	}
	if err := out.Close(); err != nil {
		t.Errorf("close of unopened output failed: %v", err)
	}
}

func TestApplyVolume(t *testing.T) {
	tests := []struct {
		name     string
		volume   int
		muted    bool
		input    int32
		expected int32
	}{
		{"full volume", 100, false, 1000, 1000},
		{"half volume", 50, false, 1000, 500},
		{"zero volume", 0, false, 1000, 0},
		{"muted", 100, true, 1000, 0},
		{"negative sample", 50, false, -1000, -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyVolume([]int32{tt.input}, tt.volume, tt.muted)
			if out[0] != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, out[0])
			}
		})
	}
}

func TestApplyVolumeClamps(t *testing.T) {
	out := applyVolume([]int32{audio.Max24Bit + 100, audio.Min24Bit - 100}, 100, false)
	if out[0] != audio.Max24Bit {
		t.Errorf("expected %d, got %d", audio.Max24Bit, out[0])
	}
	if out[1] != audio.Min24Bit {
		t.Errorf("expected %d, got %d", audio.Min24Bit, out[1])
	}
}

func TestVolumeBounds(t *testing.T) {
	v := newVolume()

	v.SetVolume(150)
	if v.GetVolume() != 100 {
		t.Errorf("expected volume clamped to 100, got %d", v.GetVolume())
	}

	v.SetVolume(-5)
	if v.GetVolume() != 0 {
		t.Errorf("expected volume clamped to 0, got %d", v.GetVolume())
	}

	v.SetMuted(true)
	if !v.IsMuted() {
		t.Error("expected muted")
	}
}

func TestWAVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	out := NewWAVFile(path)

	if err := out.Open(8000, 2, 16); err != nil {
		t.Fatalf("failed to open: %v", err)
	}

	input := []int16{100, -100, 32767, -32768}
	samples := make([]int32, len(input))
	for i, s := range input {
		samples[i] = audio.SampleFromInt16(s)
	}
	if err := out.Write(samples); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if out.Samples() != 4 {
		t.Errorf("expected 4 samples written, got %d", out.Samples())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("expected a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}

	if buf.Format.SampleRate != 8000 || buf.Format.NumChannels != 2 {
		t.Errorf("expected 8000Hz stereo, got %dHz %dch", buf.Format.SampleRate, buf.Format.NumChannels)
	}
	if len(buf.Data) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(buf.Data))
	}
	for i, want := range input {
		if buf.Data[i] != int(want) {
			t.Errorf("sample %d: expected %d, got %d", i, want, buf.Data[i])
		}
	}
}

func TestWAVFileWriteBeforeOpen(t *testing.T) {
	out := NewWAVFile(filepath.Join(t.TempDir(), "unused.wav"))
	if err := out.Write([]int32{0}); err == nil {
		t.Error("expected error writing before open")
	}
}

func TestRawOutput(t *testing.T) {
	tests := []struct {
		name      string
		bigEndian bool
		expected  []byte
	}{
		{"little-endian", false, []byte{0x34, 0x12, 0xFF, 0xFF}},
		{"big-endian", true, []byte{0x12, 0x34, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := NewRaw(&buf, tt.bigEndian)
			if err := out.Open(16000, 1, 16); err != nil {
				t.Fatalf("failed to open: %v", err)
			}

			samples := []int32{audio.SampleFromInt16(0x1234), audio.SampleFromInt16(-1)}
			if err := out.Write(samples); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.expected) {
				t.Errorf("expected %x, got %x", tt.expected, buf.Bytes())
			}
			if out.BytesWritten() != 4 {
				t.Errorf("expected 4 bytes written, got %d", out.BytesWritten())
			}
		})
	}
}

func TestRawOutputMuted(t *testing.T) {
	var buf bytes.Buffer
	out := NewRaw(&buf, false)
	out.SetMuted(true)
	if err := out.Open(8000, 1, 16); err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	if err := out.Write([]int32{audio.SampleFromInt16(1000)}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0}) {
		t.Errorf("expected silence, got %x", buf.Bytes())
	}
}
