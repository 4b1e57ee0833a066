//go:build speex

// ABOUTME: libspeex frame decoder
// ABOUTME: Decodes Speex frames to 16-bit PCM through cgo
package decode

/*
#cgo pkg-config: speex
#include <stdlib.h>
#include <speex/speex.h>
#include <speex/speex_stereo.h>
#include <speex/speex_callbacks.h>

typedef struct {
	void *state;
	SpeexBits bits;
	SpeexStereoState *stereo;
	int frame_size;
	int channels;
} spx_decoder;

static spx_decoder *spx_decoder_new(int mode, int rate, int channels, int enhanced) {
	const SpeexMode *m = speex_lib_get_mode(mode);
	if (m == NULL) {
		return NULL;
	}
	spx_decoder *d = calloc(1, sizeof(spx_decoder));
	if (d == NULL) {
		return NULL;
	}
	d->state = speex_decoder_init(m);
	if (d->state == NULL) {
		free(d);
		return NULL;
	}
	speex_decoder_ctl(d->state, SPEEX_SET_ENH, &enhanced);
	speex_decoder_ctl(d->state, SPEEX_SET_SAMPLING_RATE, &rate);
	speex_decoder_ctl(d->state, SPEEX_GET_FRAME_SIZE, &d->frame_size);
	d->channels = channels;
	if (channels == 2) {
		SpeexCallback cb = {0};
		d->stereo = speex_stereo_state_init();
		cb.callback_id = SPEEX_INBAND_STEREO;
		cb.func = speex_std_stereo_request_handler;
		cb.data = d->stereo;
		speex_decoder_ctl(d->state, SPEEX_SET_HANDLER, &cb);
	}
	speex_bits_init(&d->bits);
	return d;
}

static int spx_decoder_frame(spx_decoder *d, int lost, spx_int16_t *out) {
	int ret = speex_decode_int(d->state, lost ? NULL : &d->bits, out);
	if (ret == 0 && d->channels == 2) {
		speex_decode_stereo_int(out, d->frame_size, d->stereo);
	}
	return ret;
}

static void spx_decoder_free(spx_decoder *d) {
	speex_bits_destroy(&d->bits);
	if (d->stereo != NULL) {
		speex_stereo_state_destroy(d->stereo);
	}
	speex_decoder_destroy(d->state);
	free(d);
}
*/
import "C"

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// ErrCorruptFrame is returned when libspeex rejects a frame's bitstream.
var ErrCorruptFrame = errors.New("corrupt speex frame")

// SpeexDecoder decodes Speex frames with libspeex
type SpeexDecoder struct {
	dec      *C.spx_decoder
	channels int
	frame    []int16
	pending  []byte
}

// NewSpeex creates an uninitialized libspeex frame decoder
func NewSpeex() (FrameDecoder, error) {
	return &SpeexDecoder{}, nil
}

// Init creates the libspeex decoder state for the given mode
func (d *SpeexDecoder) Init(mode, sampleRate, channels int, enhanced bool) error {
	if d.dec != nil {
		return fmt.Errorf("speex decoder already initialized")
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	enh := 0
	if enhanced {
		enh = 1
	}
	d.dec = C.spx_decoder_new(C.int(mode), C.int(sampleRate), C.int(channels), C.int(enh))
	if d.dec == nil {
		return fmt.Errorf("failed to create speex decoder for mode %d", mode)
	}

	d.channels = channels
	d.frame = make([]int16, int(d.dec.frame_size)*channels)
	return nil
}

// Submit loads a packet and decodes its first frame
func (d *SpeexDecoder) Submit(packet []byte) error {
	if d.dec == nil {
		return fmt.Errorf("speex decoder not initialized")
	}
	if len(packet) == 0 {
		return d.decodeFrame(true)
	}
	C.speex_bits_read_from(&d.dec.bits, (*C.char)(unsafe.Pointer(&packet[0])), C.int(len(packet)))
	return d.decodeFrame(false)
}

// Repeat decodes the next frame left in the current packet
func (d *SpeexDecoder) Repeat() error {
	if d.dec == nil {
		return fmt.Errorf("speex decoder not initialized")
	}
	return d.decodeFrame(false)
}

func (d *SpeexDecoder) decodeFrame(lost bool) error {
	flag := C.int(0)
	if lost {
		flag = 1
	}
	out := (*C.spx_int16_t)(unsafe.Pointer(&d.frame[0]))

	switch C.spx_decoder_frame(d.dec, flag, out) {
	case 0:
	case -1:
		// Bitstream exhausted: fill the gap with a concealment frame.
		if lost {
			return fmt.Errorf("speex concealment failed")
		}
		return d.decodeFrame(true)
	default:
		return ErrCorruptFrame
	}

	for _, s := range d.frame {
		d.pending = binary.LittleEndian.AppendUint16(d.pending, uint16(s))
	}
	return nil
}

// Drain copies queued PCM bytes into dst
func (d *SpeexDecoder) Drain(dst []byte) int {
	n := copy(dst, d.pending)
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
	return n
}

// Close releases the libspeex state
func (d *SpeexDecoder) Close() error {
	if d.dec != nil {
		C.spx_decoder_free(d.dec)
		d.dec = nil
	}
	d.pending = nil
	return nil
}

// SpeexVersion returns the version string of the linked libspeex
func SpeexVersion() string {
	var s *C.char
	C.speex_lib_ctl(C.SPEEX_LIB_GET_VERSION_STRING, unsafe.Pointer(&s))
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
