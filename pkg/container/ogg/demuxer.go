// ABOUTME: Resumable Ogg segment reader
// ABOUTME: Walks pages segment by segment and checks each page's checksum
package ogg

import (
	"bytes"
	"io"
	"log"
)

// Demuxer reads segments from an Ogg stream. It is not safe for concurrent use.
type Demuxer struct {
	r io.Reader

	// Strict turns checksum mismatches into errors. When false they are
	// counted and logged but the page is still delivered.
	Strict bool

	header  [HeaderSize + MaxSegments]byte
	payload [MaxSegmentSize]byte

	page     PageHeader
	curseg   int
	segments int
	crc      uint32

	pages      int
	badPages   int
	lastValid  bool
	inProgress bool
}

// NewDemuxer creates a demuxer reading from r.
func NewDemuxer(r io.Reader) *Demuxer {
	return &Demuxer{r: r}
}

// NextSegment returns the payload of the next segment, reading a new page
// header when the current page is used up. The returned slice is only valid
// until the next call.
//
// io.EOF is returned when the stream ends cleanly on a page boundary. A stream
// cut short inside a page yields io.ErrUnexpectedEOF.
func (d *Demuxer) NextSegment() ([]byte, error) {
	for d.curseg >= d.segments {
		if err := d.readPage(); err != nil {
			return nil, err
		}
		if d.segments == 0 {
			if err := d.finishPage(); err != nil {
				return nil, err
			}
		}
	}

	size := int(d.header[HeaderSize+d.curseg])
	seg := d.payload[:size]
	if _, err := io.ReadFull(d.r, seg); err != nil {
		return nil, unexpected(err)
	}
	d.crc = UpdateChecksum(d.crc, seg)
	d.curseg++

	if d.curseg == d.segments {
		if err := d.finishPage(); err != nil {
			return nil, err
		}
	}
	return seg, nil
}

// SegmentsLeft returns how many segments of the current page are still unread.
func (d *Demuxer) SegmentsLeft() int {
	return d.segments - d.curseg
}

// Page returns the header of the page currently being read.
func (d *Demuxer) Page() PageHeader {
	return d.page
}

// Pages returns the number of page headers read so far.
func (d *Demuxer) Pages() int {
	return d.pages
}

// ChecksumErrors returns the number of completed pages whose checksum did not
// match.
func (d *Demuxer) ChecksumErrors() int {
	return d.badPages
}

// PageValid reports whether the last fully read page had a matching checksum.
func (d *Demuxer) PageValid() bool {
	return d.lastValid
}

func (d *Demuxer) readPage() error {
	hdr := d.header[:HeaderSize]
	if _, err := io.ReadFull(d.r, hdr); err != nil {
		// Nothing read at all is a clean end of stream.
		return err
	}

	d.page = parsePageHeader(hdr)
	for i := checksumOffset; i < checksumOffset+4; i++ {
		hdr[i] = 0
	}
	d.crc = UpdateChecksum(0, hdr)

	if !bytes.Equal(hdr[0:4], capturePattern[:]) {
		log.Printf("ogg: capture pattern missing, got %q", hdr[0:4])
		return ErrMissingCapture
	}

	d.segments = int(hdr[segmentCountOffset])
	d.curseg = 0
	d.pages++
	d.inProgress = true

	table := d.header[HeaderSize : HeaderSize+d.segments]
	if _, err := io.ReadFull(d.r, table); err != nil {
		d.segments = 0
		return unexpected(err)
	}
	d.crc = UpdateChecksum(d.crc, table)

	for _, size := range table {
		if size > MaxSegmentSize {
			d.segments = 0
			return ErrSegmentTooLarge
		}
	}
	return nil
}

func (d *Demuxer) finishPage() error {
	if !d.inProgress {
		return nil
	}
	d.inProgress = false
	d.lastValid = d.crc == d.page.Checksum
	if d.lastValid {
		return nil
	}

	d.badPages++
	err := &ChecksumError{Sequence: d.page.Sequence, Stored: d.page.Checksum, Computed: d.crc}
	if d.Strict {
		return err
	}
	log.Printf("%v (ignored)", err)
	return nil
}

// unexpected maps a clean EOF inside a page to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
