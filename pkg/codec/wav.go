// ABOUTME: WAVE packet source
// ABOUTME: Reads fixed-size Speex packets from the data chunk
package codec

import (
	"io"
	"log"

	"github.com/Resonate-Protocol/resonate-speex/pkg/container/wav"
	"github.com/Resonate-Protocol/resonate-speex/pkg/speex"
)

type wavSource struct {
	r       io.Reader
	buf     []byte
	packets int
}

func openWAV(r io.Reader, id string) (*wavSource, *speex.Header, error) {
	h, data, err := wav.ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}

	if h.Channels != h.Speex.Channels || h.SampleRate != h.Speex.SampleRate {
		log.Printf("[%s] fmt chunk declares %dHz/%dch but Speex header declares %dHz/%dch, using Speex header",
			id, h.SampleRate, h.Channels, h.Speex.SampleRate, h.Speex.Channels)
	}
	if h.DataSize > 0 {
		data = io.LimitReader(data, int64(h.DataSize))
	}

	return &wavSource{
		r:   data,
		buf: make([]byte, h.BytesPerPacket),
	}, h.Speex, nil
}

func (w *wavSource) next() ([]byte, error) {
	if _, err := io.ReadFull(w.r, w.buf); err != nil {
		return nil, err
	}
	w.packets++
	return w.buf, nil
}

// packet numbers start at 1; the header counts as packet 0
func (w *wavSource) packet() int {
	return w.packets
}

func (w *wavSource) pages() int {
	return 0
}

func (w *wavSource) checksumErrors() int {
	return 0
}
