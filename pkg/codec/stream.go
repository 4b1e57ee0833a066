// ABOUTME: Streaming decode driver
// ABOUTME: Opens a Speex source and decodes packets into bounded PCM buffers
package codec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	"github.com/Resonate-Protocol/resonate-speex/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
	"github.com/google/uuid"
)

// sourceBufferSize is the read buffer placed in front of files and HTTP bodies
const sourceBufferSize = 64 << 10

// packetSource yields audio packets from a container once its header has
// been consumed
type packetSource interface {
	// next returns the next audio packet. The slice is only valid until the
	// following call. io.EOF and io.ErrUnexpectedEOF mean the input ended.
	next() ([]byte, error)

	// packet returns the index of the packet last returned by next
	packet() int

	pages() int
	checksumErrors() int
}

// Stats holds counters for an open stream
type Stats struct {
	Pages          int64
	ChecksumErrors int64
	Packets        int64
	Bytes          int64
}

// Stream decodes one Speex source. Reads must come from a single goroutine;
// EndOfStream, Initialized, Stats and Close may be called from any goroutine.
type Stream struct {
	cfg Config
	id  string

	// mu serializes Open, reads and decoder teardown
	mu        sync.Mutex
	container Container
	src       packetSource
	dec       decode.FrameDecoder
	header    *speex.Header
	format    audio.Format
	scratch   []byte

	closerMu sync.Mutex
	closer   io.Closer

	initialized atomic.Bool
	endOfStream atomic.Bool
	failed      atomic.Bool

	pages          atomic.Int64
	checksumErrors atomic.Int64
	packets        atomic.Int64
	bytes          atomic.Int64
}

// NewStream creates an unopened stream
func NewStream(cfg Config) *Stream {
	return &Stream{
		cfg:     cfg.withDefaults(),
		id:      uuid.NewString()[:8],
		scratch: make([]byte, 4096),
	}
}

// Open creates a stream and opens r with it
func Open(r io.Reader, cfg Config) (*Stream, error) {
	s := NewStream(cfg)
	if err := s.Open(r); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenFile opens a local file. When cfg leaves the container unset and the
// extension is known, the extension decides the container.
func OpenFile(path string, cfg Config) (*Stream, error) {
	if cfg.Container == ContainerDefault {
		if c, err := ContainerForPath(path); err == nil {
			cfg.Container = c
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	s, err := Open(buffered(f), cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// bufferedSource reads through a buffer and closes the underlying source
type bufferedSource struct {
	*bufio.Reader
	io.Closer
}

// buffered wraps rc so page headers and segment tables do not each cost a
// read on the underlying source
func buffered(rc io.ReadCloser) io.ReadCloser {
	return bufferedSource{Reader: bufio.NewReaderSize(rc, sourceBufferSize), Closer: rc}
}

// OpenURL opens an http(s) source. The container is picked from the URL
// path the same way OpenFile does.
func OpenURL(ctx context.Context, rawURL string, cfg Config) (*Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if cfg.Container == ContainerDefault {
		if c, err := ContainerForPath(u.Path); err == nil {
			cfg.Container = c
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	log.Printf("Fetching stream: %s", u.Redacted())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream fetch failed: HTTP %d", resp.StatusCode)
	}

	return Open(buffered(resp.Body), cfg)
}

// Open binds the stream to r and consumes the container and Speex headers.
// Any source opened earlier is closed first. If r implements io.Closer the
// stream takes ownership of it and closes it on failure or in Close.
func (s *Stream) Open(r io.Reader) error {
	s.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized.Store(false)
	s.endOfStream.Store(false)
	s.failed.Store(false)
	s.pages.Store(0)
	s.checksumErrors.Store(0)
	s.packets.Store(0)
	s.bytes.Store(0)
	s.src = nil
	s.header = nil
	s.format = audio.Format{}

	if c, ok := r.(io.Closer); ok {
		s.setCloser(c)
	}

	s.container = s.cfg.Container.resolve()
	if err := s.openLocked(r); err != nil {
		log.Printf("[%s] %v", s.id, err)
		s.releaseLocked()
		s.closeSource()
		return &OpenError{Container: s.container, Err: err}
	}

	s.format = audio.PCM16(s.header.SampleRate, s.header.Channels)
	s.initialized.Store(true)

	log.Printf("[%s] Opened %v stream: %dHz, %d channels, %v, %d frames per packet",
		s.id, s.container, s.header.SampleRate, s.header.Channels, s.header.Mode, s.header.FramesPerPacket)
	return nil
}

func (s *Stream) openLocked(r io.Reader) error {
	dec, err := s.cfg.NewDecoder()
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	s.dec = dec

	var (
		src    packetSource
		header *speex.Header
	)
	switch s.container {
	case ContainerOgg:
		src, header, err = openOgg(r, s.cfg.StrictChecksum, s.id)
	case ContainerWAV:
		src, header, err = openWAV(r, s.id)
	default:
		err = fmt.Errorf("unsupported container: %v", s.container)
	}
	if err != nil {
		return err
	}

	if err := dec.Init(int(header.Mode), header.SampleRate, header.Channels, s.cfg.Enhanced); err != nil {
		return fmt.Errorf("failed to initialize decoder: %w", err)
	}

	s.src = src
	s.header = header
	s.syncCounters()
	return nil
}

// Read decodes about StreamingBufferSize bytes
func (s *Stream) Read() (*audio.Buffer, error) {
	return s.ReadBytes(s.cfg.StreamingBufferSize)
}

// ReadAll decodes up to about MaxFileSize bytes
func (s *Stream) ReadAll() (*audio.Buffer, error) {
	return s.ReadBytes(s.cfg.MaxFileSize)
}

// ReadBytes decodes whole packets until at least maxBytes bytes have been
// produced or the input ends. It returns a nil buffer and nil error once the
// stream is exhausted, including when the input ends before this call
// produced anything.
func (s *Stream) ReadBytes(maxBytes int) (*audio.Buffer, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("invalid read budget: %d", maxBytes)
	}
	if s.endOfStream.Load() {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized.Load() || s.src == nil {
		return nil, ErrNotOpen
	}
	if s.failed.Load() {
		return nil, ErrStreamFailed
	}

	var out []byte
	for len(out) < maxBytes {
		packet, err := s.src.next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if errors.Is(err, io.ErrUnexpectedEOF) {
					log.Printf("[%s] Stream truncated after packet %d", s.id, s.src.packet())
				}
				s.endOfStream.Store(true)
				break
			}
			if !s.initialized.Load() {
				// Close pulled the source out from under this read
				return nil, ErrNotOpen
			}
			return nil, s.fail(s.src.packet()+1, err)
		}

		out, err = s.decodePacket(packet, out)
		if err != nil {
			return nil, s.fail(s.src.packet(), err)
		}
		s.packets.Add(1)
	}
	s.syncCounters()

	if len(out) == 0 {
		return nil, nil
	}
	s.bytes.Add(int64(len(out)))
	return &audio.Buffer{Data: out, Format: s.format}, nil
}

// decodePacket submits one packet and the repeat calls for the rest of its
// frames, appending decoded bytes to out
func (s *Stream) decodePacket(packet []byte, out []byte) ([]byte, error) {
	if err := s.dec.Submit(packet); err != nil {
		return out, err
	}
	out = s.drain(out)

	for i := 1; i < s.header.FramesPerPacket; i++ {
		if err := s.dec.Repeat(); err != nil {
			return out, err
		}
		out = s.drain(out)
	}
	return out, nil
}

func (s *Stream) drain(out []byte) []byte {
	for {
		n := s.dec.Drain(s.scratch)
		if n == 0 {
			return out
		}
		out = append(out, s.scratch[:n]...)
	}
}

func (s *Stream) fail(packet int, err error) error {
	s.failed.Store(true)
	s.syncCounters()
	rerr := &ReadError{Packet: packet, Err: err}
	log.Printf("[%s] %v", s.id, rerr)
	return rerr
}

func (s *Stream) syncCounters() {
	if s.src == nil {
		return
	}
	s.pages.Store(int64(s.src.pages()))
	s.checksumErrors.Store(int64(s.src.checksumErrors()))
}

// EndOfStream reports whether a read has reached the end of the input
func (s *Stream) EndOfStream() bool {
	return s.endOfStream.Load()
}

// Initialized reports whether the stream is open and ready to read
func (s *Stream) Initialized() bool {
	return s.initialized.Load()
}

// Failed reports whether a read failed. A failed stream must be reopened.
func (s *Stream) Failed() bool {
	return s.failed.Load()
}

// Format returns the PCM format of decoded buffers
func (s *Stream) Format() audio.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Header returns the Speex header of the open stream, or nil
func (s *Stream) Header() *speex.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// Container returns the container the stream was opened with
func (s *Stream) Container() Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.container
}

// ID returns the short identifier used in log lines
func (s *Stream) ID() string {
	return s.id
}

// Stats returns a snapshot of the stream counters
func (s *Stream) Stats() Stats {
	return Stats{
		Pages:          s.pages.Load(),
		ChecksumErrors: s.checksumErrors.Load(),
		Packets:        s.packets.Load(),
		Bytes:          s.bytes.Load(),
	}
}

// Close releases the source and the decoder. It is safe to call more than
// once, before Open, and while another goroutine is blocked in a read: the
// source is closed first so the read can return, with ErrNotOpen.
func (s *Stream) Close() error {
	s.initialized.Store(false)
	err := s.closeSource()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	return err
}

func (s *Stream) releaseLocked() {
	if s.dec != nil {
		if err := s.dec.Close(); err != nil {
			log.Printf("[%s] Failed to close decoder: %v", s.id, err)
		}
		s.dec = nil
	}
	s.src = nil
}

func (s *Stream) setCloser(c io.Closer) {
	s.closerMu.Lock()
	s.closer = c
	s.closerMu.Unlock()
}

func (s *Stream) closeSource() error {
	s.closerMu.Lock()
	c := s.closer
	s.closer = nil
	s.closerMu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}
