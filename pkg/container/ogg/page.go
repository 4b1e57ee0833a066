// ABOUTME: Ogg page layout and page builder
// ABOUTME: Header field offsets, parsed header type, and page encoding
package ogg

import (
	"encoding/binary"
)

const (
	// HeaderSize is the fixed part of a page header, before the segment table.
	HeaderSize = 27

	// MaxSegmentSize is the largest lacing value accepted.
	MaxSegmentSize = 254

	// MaxSegments is the largest segment count a page header can declare.
	MaxSegments = 255

	checksumOffset     = 22
	segmentCountOffset = 26
)

// Page header flags.
const (
	FlagContinuation = 0x01
	FlagBOS          = 0x02
	FlagEOS          = 0x04
)

var capturePattern = [4]byte{'O', 'g', 'g', 'S'}

// PageHeader is the decoded fixed header of the most recent page.
type PageHeader struct {
	Version    byte
	HeaderType byte
	GranulePos uint64
	Serial     uint32
	Sequence   uint32
	Checksum   uint32 // stored value, as read from the stream
	Segments   int
}

// parsePageHeader decodes b, which must hold HeaderSize bytes with the
// checksum field still intact.
func parsePageHeader(b []byte) PageHeader {
	return PageHeader{
		Version:    b[4],
		HeaderType: b[5],
		GranulePos: binary.LittleEndian.Uint64(b[6:14]),
		Serial:     binary.LittleEndian.Uint32(b[14:18]),
		Sequence:   binary.LittleEndian.Uint32(b[18:22]),
		Checksum:   binary.LittleEndian.Uint32(b[checksumOffset : checksumOffset+4]),
		Segments:   int(b[segmentCountOffset]),
	}
}

// Page is an outgoing page where every packet occupies exactly one segment.
type Page struct {
	HeaderType byte
	GranulePos uint64
	Serial     uint32
	Sequence   uint32
	Packets    [][]byte
}

// AddPacket appends a packet to the page.
func (p *Page) AddPacket(packet []byte) error {
	if len(packet) > MaxSegmentSize {
		return ErrPacketTooLarge
	}
	if len(p.Packets) >= MaxSegments {
		return ErrPacketTooLarge
	}
	p.Packets = append(p.Packets, packet)
	return nil
}

// Encode serializes the page with its checksum filled in.
func (p *Page) Encode() []byte {
	payloadSize := 0
	for _, pkt := range p.Packets {
		payloadSize += len(pkt)
	}

	headerSize := HeaderSize + len(p.Packets)
	data := make([]byte, headerSize+payloadSize)

	copy(data[0:4], capturePattern[:])
	data[4] = 0
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:14], p.GranulePos)
	binary.LittleEndian.PutUint32(data[14:18], p.Serial)
	binary.LittleEndian.PutUint32(data[18:22], p.Sequence)
	data[segmentCountOffset] = byte(len(p.Packets))

	offset := headerSize
	for i, pkt := range p.Packets {
		data[HeaderSize+i] = byte(len(pkt))
		copy(data[offset:], pkt)
		offset += len(pkt)
	}

	binary.LittleEndian.PutUint32(data[checksumOffset:checksumOffset+4], Checksum(data))
	return data
}
