// ABOUTME: Tests for the playback engine
// ABOUTME: Runs synthetic streams into a recording output
package player

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode/decodetest"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
	"github.com/Resonate-Protocol/resonate-speex/pkg/container/ogg"
	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
)

type recordingOutput struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	samples    []int32
	writes     int
	closed     bool
	writeErr   error
	entered    chan struct{}
	release    chan struct{}
}

func (o *recordingOutput) Open(sampleRate, channels, bitDepth int) error {
	o.sampleRate = sampleRate
	o.channels = channels
	return nil
}

func (o *recordingOutput) Write(samples []int32) error {
	if o.entered != nil {
		select {
		case o.entered <- struct{}{}:
		default:
		}
	}
	if o.release != nil {
		<-o.release
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.writeErr != nil {
		return o.writeErr
	}
	o.samples = append(o.samples, samples...)
	o.writes++
	return nil
}

func (o *recordingOutput) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

// openStream builds an Ogg stream with the given number of one-byte audio
// packets, each decoding to bytesPerPacket bytes
func openStream(t *testing.T, packets, bytesPerPacket int) *codec.Stream {
	t.Helper()

	header := &speex.Header{SampleRate: 8000, Channels: 1, FrameSize: 160, FramesPerPacket: 1}
	first := ogg.Page{}
	first.AddPacket(header.Marshal())
	first.AddPacket([]byte("comment"))

	audio := ogg.Page{Sequence: 1}
	for i := 0; i < packets; i++ {
		audio.AddPacket([]byte{byte(i)})
	}

	file := append(first.Encode(), audio.Encode()...)

	cfg := codec.DefaultConfig()
	cfg.Container = codec.ContainerOgg
	cfg.StreamingBufferSize = bytesPerPacket
	cfg.NewDecoder = decodetest.New(bytesPerPacket).Factory()

	s, err := codec.Open(bytes.NewReader(file), cfg)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	return s
}

func waitDone(t *testing.T, p *Player) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback to finish")
	}
}

func TestPlaysWholeStream(t *testing.T) {
	stream := openStream(t, 3, 8)
	out := &recordingOutput{}

	p := New(stream, out, 0)
	if err := p.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	waitDone(t, p)

	if err := p.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if p.State() != StateFinished {
		t.Errorf("expected finished, got %v", p.State())
	}
	if out.sampleRate != 8000 || out.channels != 1 {
		t.Errorf("expected output opened at 8000Hz mono, got %dHz %dch", out.sampleRate, out.channels)
	}
	if len(out.samples) != 12 {
		t.Errorf("expected 12 samples, got %d", len(out.samples))
	}
	if !out.closed {
		t.Error("expected output to be closed")
	}

	stats := p.Stats()
	if stats.Decoded != 3 || stats.Played != 3 {
		t.Errorf("expected 3 decoded and played buffers, got %d and %d", stats.Decoded, stats.Played)
	}
	if stats.Samples != 12 {
		t.Errorf("expected 12 samples, got %d", stats.Samples)
	}
	if stats.Stream.Packets != 3 {
		t.Errorf("expected 3 stream packets, got %d", stats.Stream.Packets)
	}
	if !stream.EndOfStream() {
		t.Error("expected stream to be at end")
	}
}

func TestResamplesToOutputRate(t *testing.T) {
	stream := openStream(t, 4, 200)
	out := &recordingOutput{}

	p := New(stream, out, 16000)
	if err := p.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	waitDone(t, p)

	if out.sampleRate != 16000 {
		t.Errorf("expected output opened at 16000Hz, got %d", out.sampleRate)
	}
	// 400 input samples at twice the rate, less the interpolation tail
	if len(out.samples) < 790 || len(out.samples) > 800 {
		t.Errorf("expected about 800 samples, got %d", len(out.samples))
	}
}

func TestOutputErrorFailsPlayback(t *testing.T) {
	stream := openStream(t, 3, 8)
	out := &recordingOutput{writeErr: errors.New("device gone")}

	p := New(stream, out, 0)
	if err := p.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if err := p.Wait(); !errors.Is(err, out.writeErr) {
		t.Errorf("expected output error, got %v", err)
	}
	if p.State() != StateFailed {
		t.Errorf("expected failed, got %v", p.State())
	}
}

func TestStopInterruptsPlayback(t *testing.T) {
	stream := openStream(t, 50, 8)
	out := &recordingOutput{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	p := New(stream, out, 0)
	if err := p.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	select {
	case <-out.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first write")
	}

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	close(out.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stop")
	}

	if p.State() != StateStopped {
		t.Errorf("expected stopped, got %v", p.State())
	}
	if p.Err() != nil {
		t.Errorf("expected no error after stop, got %v", p.Err())
	}
	if stream.Initialized() {
		t.Error("expected stream to be closed")
	}
	if out.writes >= 50 {
		t.Errorf("expected playback to end early, got %d writes", out.writes)
	}
}

func TestStartRequiresOpenStream(t *testing.T) {
	p := New(codec.NewStream(codec.DefaultConfig()), &recordingOutput{}, 0)
	if err := p.Start(); !errors.Is(err, codec.ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
	p.Stop()
}

func TestStateString(t *testing.T) {
	if StatePlaying.String() != "playing" {
		t.Errorf("expected playing, got %s", StatePlaying)
	}
	if State(99).String() != "State(99)" {
		t.Errorf("expected State(99), got %s", State(99))
	}
}
