// ABOUTME: Stream playback engine
// ABOUTME: A decode goroutine refills a bounded queue that a playback goroutine drains
package player

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/resample"
	"github.com/Resonate-Protocol/resonate-speex/pkg/codec"
)

// queueDepth is the number of decoded buffers held ahead of playback
const queueDepth = 10

// State describes where playback is
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StateFinished
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats tracks playback metrics
type Stats struct {
	Decoded    int64
	Played     int64
	Samples    int64
	QueueDepth int
	Stream     codec.Stats
}

// Player plays one open stream through an output
type Player struct {
	stream     *codec.Stream
	out        output.Output
	outputRate int

	queue  chan []int32
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	state   atomic.Int32
	started atomic.Bool
	stopped atomic.Bool
	errMu   sync.Mutex
	err     error

	decoded atomic.Int64
	played  atomic.Int64
	samples atomic.Int64
}

// New creates a player. A non-zero outputRate resamples the stream to that
// rate before it reaches the output.
func New(stream *codec.Stream, out output.Output, outputRate int) *Player {
	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		stream:     stream,
		out:        out,
		outputRate: outputRate,
		queue:      make(chan []int32, queueDepth),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start opens the output and begins playback
func (p *Player) Start() error {
	if !p.stream.Initialized() {
		return codec.ErrNotOpen
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StatePlaying)) {
		return fmt.Errorf("player already started")
	}

	format := p.stream.Format()
	pcm, err := decode.NewPCM(format)
	if err != nil {
		p.state.Store(int32(StateFailed))
		return fmt.Errorf("failed to create PCM decoder: %w", err)
	}

	rate := format.SampleRate
	var rs *resample.Resampler
	if p.outputRate > 0 && p.outputRate != rate {
		rs = resample.New(rate, p.outputRate, format.Channels)
		log.Printf("[%s] Resampling %dHz -> %dHz", p.stream.ID(), rate, p.outputRate)
		rate = p.outputRate
	}

	if err := p.out.Open(rate, format.Channels, format.BitDepth); err != nil {
		p.state.Store(int32(StateFailed))
		return fmt.Errorf("failed to open output: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.decodeLoop(pcm, rs)
	}()
	go func() {
		defer wg.Done()
		p.playLoop()
	}()
	go func() {
		wg.Wait()
		if err := p.out.Close(); err != nil {
			log.Printf("[%s] Failed to close output: %v", p.stream.ID(), err)
		}
		p.finish()
		close(p.done)
	}()
	p.started.Store(true)

	return nil
}

// decodeLoop reads the stream until it ends, fails or playback stops
func (p *Player) decodeLoop(pcm decode.Decoder, rs *resample.Resampler) {
	defer close(p.queue)

	for p.ctx.Err() == nil {
		buf, err := p.stream.Read()
		if err != nil {
			if p.ctx.Err() == nil {
				p.setErr(fmt.Errorf("decode failed: %w", err))
			}
			return
		}
		if buf == nil {
			log.Printf("[%s] End of stream after %d buffers", p.stream.ID(), p.decoded.Load())
			return
		}

		samples, err := pcm.Decode(buf.Data)
		if err != nil {
			p.setErr(fmt.Errorf("sample conversion failed: %w", err))
			return
		}
		if rs != nil {
			out := make([]int32, rs.MaxOutput(len(samples)))
			samples = out[:rs.Resample(samples, out)]
		}

		select {
		case p.queue <- samples:
			p.decoded.Add(1)
		case <-p.ctx.Done():
			return
		}
	}
}

// playLoop writes queued buffers to the output. After a stop or failure it
// keeps draining the queue so the decode goroutine never blocks.
func (p *Player) playLoop() {
	for samples := range p.queue {
		if p.ctx.Err() != nil {
			continue
		}
		if err := p.out.Write(samples); err != nil {
			p.setErr(fmt.Errorf("output failed: %w", err))
			continue
		}
		p.played.Add(1)
		p.samples.Add(int64(len(samples)))
	}
}

func (p *Player) setErr(err error) {
	p.errMu.Lock()
	if p.err == nil {
		p.err = err
		log.Printf("[%s] Playback error: %v", p.stream.ID(), err)
	}
	p.errMu.Unlock()
	p.cancel()
}

func (p *Player) finish() {
	switch {
	case p.Err() != nil:
		p.state.Store(int32(StateFailed))
	case p.stopped.Load():
		p.state.Store(int32(StateStopped))
	default:
		p.state.Store(int32(StateFinished))
	}
	p.cancel()
}

// Stop ends playback, closes the stream and waits for the goroutines to exit
func (p *Player) Stop() {
	if !p.started.Load() {
		return
	}
	p.stopped.Store(true)
	p.cancel()
	if err := p.stream.Close(); err != nil {
		log.Printf("[%s] Failed to close stream: %v", p.stream.ID(), err)
	}
	<-p.done
}

// Done is closed once playback has ended for any reason
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until playback ends and returns its error
func (p *Player) Wait() error {
	<-p.done
	return p.Err()
}

// Err returns the first playback error
func (p *Player) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// State returns the current playback state
func (p *Player) State() State {
	return State(p.state.Load())
}

// Stats returns playback statistics
func (p *Player) Stats() Stats {
	return Stats{
		Decoded:    p.decoded.Load(),
		Played:     p.played.Load(),
		Samples:    p.samples.Load(),
		QueueDepth: len(p.queue),
		Stream:     p.stream.Stats(),
	}
}
