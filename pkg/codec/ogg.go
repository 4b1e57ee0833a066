// ABOUTME: Ogg packet source
// ABOUTME: Finds the Speex header on the first page and yields audio segments
package codec

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/Resonate-Protocol/resonate-speex/pkg/container/ogg"
	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
)

type oggSource struct {
	d *ogg.Demuxer

	// index of the next segment; 0 is the header
	nextPacket int
}

// openOgg consumes segments of the first page until one parses as a Speex
// header
func openOgg(r io.Reader, strict bool, id string) (*oggSource, *speex.Header, error) {
	d := ogg.NewDemuxer(r)
	d.Strict = strict

	for {
		seg, err := d.NextSegment()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, nil, fmt.Errorf("failed to read header page: %w", err)
		}

		header, err := speex.ParseHeader(seg)
		if err == nil {
			return &oggSource{d: d, nextPacket: 1}, header, nil
		}
		if !errors.Is(err, speex.ErrHeaderSize) && !errors.Is(err, speex.ErrNotSpeexHeader) {
			return nil, nil, err
		}
		if d.SegmentsLeft() == 0 {
			return nil, nil, ErrMissingHeader
		}
		log.Printf("[%s] Skipping non-header segment of %d bytes", id, len(seg))
	}
}

func (o *oggSource) next() ([]byte, error) {
	for {
		seg, err := o.d.NextSegment()
		if err != nil {
			return nil, err
		}
		n := o.nextPacket
		o.nextPacket++
		if n == 1 {
			// comment header
			continue
		}
		return seg, nil
	}
}

func (o *oggSource) packet() int {
	return o.nextPacket - 1
}

func (o *oggSource) pages() int {
	return o.d.Pages()
}

func (o *oggSource) checksumErrors() int {
	return o.d.ChecksumErrors()
}
