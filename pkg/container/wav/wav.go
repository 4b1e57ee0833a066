// ABOUTME: Speex-in-WAVE header parser
// ABOUTME: Walks RIFF chunks to the data chunk and decodes the Speex fmt chunk
// Package wav reads the header of a WAVE file carrying Speex frames
// (format tag 0xA109) and leaves the reader positioned at the first frame.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
	"github.com/go-audio/riff"
)

// FormatSpeex is the WAVE format tag registered for Speex.
const FormatSpeex = 0xA109

const (
	// MinExtraSize is the smallest cbSize that can hold the embedded header.
	MinExtraSize = 82

	// fmt chunk layout
	formatTagOffset      = 0
	channelsOffset       = 2
	sampleRateOffset     = 4
	blockAlignOffset     = 12
	extraSizeOffset      = 16
	speexHeaderOffset    = 20
	minFormatChunkLength = speexHeaderOffset + speex.HeaderSize

	maxChunkSize = 16 << 20
)

var (
	riffTag = [4]byte{'R', 'I', 'F', 'F'}
	waveTag = [4]byte{'W', 'A', 'V', 'E'}
	fmtTag  = [4]byte{'f', 'm', 't', ' '}
	dataTag = [4]byte{'d', 'a', 't', 'a'}
)

var (
	// ErrNotWave means the RIFF/WAVE prefix is missing.
	ErrNotWave = errors.New("wav: not a RIFF/WAVE file")

	// ErrNotSpeexWave means the fmt chunk carries a format tag other than FormatSpeex.
	ErrNotSpeexWave = errors.New("wav: not a Speex WAVE file")

	// ErrCorruptFormat means the fmt chunk is too short or its extra size is below MinExtraSize.
	ErrCorruptFormat = errors.New("wav: corrupt Speex format chunk")

	// ErrMissingFormat means the data chunk came before any fmt chunk.
	ErrMissingFormat = errors.New("wav: data chunk before fmt chunk")
)

// Header describes a Speex WAVE stream.
type Header struct {
	Channels       int
	SampleRate     int
	BytesPerPacket int
	DataSize       int
	Speex          *speex.Header
}

// ReadHeader consumes the RIFF header and every chunk up to and including the
// data chunk header. It returns the parsed header and the reader from which
// the Speex frames should be read.
func ReadHeader(r io.Reader) (*Header, io.Reader, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotWave, err)
	}
	if p.ID != riffTag || p.Format != waveTag {
		return nil, nil, ErrNotWave
	}

	var h *Header
	for {
		// IDnSize keeps the declared size. NextChunk would round an odd data
		// size up and pull the pad byte into the audio.
		id, size, err := p.IDnSize()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", unexpected(err))
		}

		if id == dataTag {
			if h == nil {
				return nil, nil, ErrMissingFormat
			}
			h.DataSize = int(size)
			return h, r, nil
		}

		if size > maxChunkSize {
			return nil, nil, fmt.Errorf("wav: chunk %q has unreasonable size %d", id[:], size)
		}
		padded := int(size) + int(size%2)
		body := make([]byte, padded)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk %q: %w", id[:], unexpected(err))
		}

		if id == fmtTag {
			h, err = parseFormat(body[:size])
			if err != nil {
				return nil, nil, err
			}
		}
	}
}

func parseFormat(body []byte) (*Header, error) {
	if len(body) < extraSizeOffset+2 {
		return nil, ErrCorruptFormat
	}
	if tag := binary.LittleEndian.Uint16(body[formatTagOffset:]); tag != FormatSpeex {
		return nil, fmt.Errorf("%w: format tag %#04x", ErrNotSpeexWave, tag)
	}

	h := &Header{
		Channels:       int(binary.LittleEndian.Uint16(body[channelsOffset:])),
		SampleRate:     int(binary.LittleEndian.Uint32(body[sampleRateOffset:])),
		BytesPerPacket: int(binary.LittleEndian.Uint16(body[blockAlignOffset:])),
	}

	if extra := binary.LittleEndian.Uint16(body[extraSizeOffset:]); extra < MinExtraSize || len(body) < minFormatChunkLength {
		return nil, fmt.Errorf("%w: extra size %d", ErrCorruptFormat, extra)
	}
	if h.BytesPerPacket == 0 {
		return nil, fmt.Errorf("%w: zero bytes per packet", ErrCorruptFormat)
	}

	sh, err := speex.ParseHeader(body[speexHeaderOffset : speexHeaderOffset+speex.HeaderSize])
	if err != nil {
		return nil, fmt.Errorf("invalid embedded Speex header: %w", err)
	}
	h.Speex = sh

	return h, nil
}

// EncodeHeader builds the RIFF, fmt and data chunk headers for a Speex WAVE
// stream whose data chunk holds dataSize bytes.
func EncodeHeader(h *Header, dataSize int) []byte {
	fmtBody := make([]byte, minFormatChunkLength)
	binary.LittleEndian.PutUint16(fmtBody[formatTagOffset:], FormatSpeex)
	binary.LittleEndian.PutUint16(fmtBody[channelsOffset:], uint16(h.Channels))
	binary.LittleEndian.PutUint32(fmtBody[sampleRateOffset:], uint32(h.SampleRate))
	binary.LittleEndian.PutUint16(fmtBody[blockAlignOffset:], uint16(h.BytesPerPacket))
	binary.LittleEndian.PutUint16(fmtBody[extraSizeOffset:], MinExtraSize)
	if h.Speex != nil {
		copy(fmtBody[speexHeaderOffset:], h.Speex.Marshal())
	}

	out := make([]byte, 0, 12+8+len(fmtBody)+8)
	out = append(out, riffTag[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4+8+len(fmtBody)+8+dataSize))
	out = append(out, waveTag[:]...)
	out = append(out, fmtTag[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(fmtBody)))
	out = append(out, fmtBody...)
	out = append(out, dataTag[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataSize))
	return out
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
