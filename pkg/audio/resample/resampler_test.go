// ABOUTME: Tests for the linear resampler
// ABOUTME: Checks passthrough, rate conversion and chunk continuity
package resample

import (
	"testing"
)

func ramp(n, step int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i * step)
	}
	return out
}

func TestPassthrough(t *testing.T) {
	r := New(16000, 16000, 2)
	if !r.Passthrough() {
		t.Fatal("expected passthrough")
	}

	input := []int32{1, 2, 3, 4, 5}
	output := make([]int32, r.MaxOutput(len(input)))
	n := r.Resample(input, output)
	if n != 4 {
		t.Fatalf("expected 4 samples (whole frames only), got %d", n)
	}
	for i := 0; i < n; i++ {
		if output[i] != input[i] {
			t.Errorf("sample %d: expected %d, got %d", i, input[i], output[i])
		}
	}
}

func TestUpsampleDoubles(t *testing.T) {
	r := New(8000, 16000, 1)
	input := ramp(100, 100)
	output := make([]int32, r.MaxOutput(len(input)))

	n := r.Resample(input, output)
	if n != 198 {
		t.Fatalf("expected 198 samples, got %d", n)
	}
	if output[1] != 50 {
		t.Errorf("expected interpolated 50, got %d", output[1])
	}
}

func TestDownsampleHalves(t *testing.T) {
	r := New(16000, 8000, 1)
	input := ramp(100, 10)
	output := make([]int32, r.MaxOutput(len(input)))

	n := r.Resample(input, output)
	if n != 50 {
		t.Fatalf("expected 50 samples, got %d", n)
	}
	if output[10] != 200 {
		t.Errorf("expected 200, got %d", output[10])
	}
}

func TestChunksMatchSingleBuffer(t *testing.T) {
	input := ramp(100, 100)

	whole := New(8000, 16000, 1)
	expected := make([]int32, whole.MaxOutput(len(input)))
	expected = expected[:whole.Resample(input, expected)]

	chunked := New(8000, 16000, 1)
	var got []int32
	for _, chunk := range [][]int32{input[:50], input[50:]} {
		out := make([]int32, chunked.MaxOutput(len(chunk)))
		got = append(got, out[:chunked.Resample(chunk, out)]...)
	}

	if len(got) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestReset(t *testing.T) {
	r := New(8000, 16000, 1)
	out := make([]int32, r.MaxOutput(10))
	r.Resample(ramp(10, 1), out)

	r.Reset()
	if r.position != 0 {
		t.Errorf("expected position 0, got %f", r.position)
	}
	if r.lastFrame[0] != 0 {
		t.Errorf("expected cleared last frame, got %d", r.lastFrame[0])
	}
}
