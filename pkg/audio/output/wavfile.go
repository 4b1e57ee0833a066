// ABOUTME: WAV file output
// ABOUTME: Writes decoded samples to a 16-bit PCM WAVE file with go-audio/wav
package output

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE format tag for integer PCM
const wavFormatPCM = 1

// WAVFile writes samples to a WAVE file
type WAVFile struct {
	*volume

	path    string
	w       io.WriteSeeker
	file    *os.File
	enc     *wav.Encoder
	buf     *goaudio.IntBuffer
	samples int64
}

// NewWAVFile creates an output that writes to path when opened
func NewWAVFile(path string) *WAVFile {
	return &WAVFile{volume: newVolume(), path: path}
}

// NewWAVWriter creates an output that writes to w. The caller keeps
// ownership of w.
func NewWAVWriter(w io.WriteSeeker) *WAVFile {
	return &WAVFile{volume: newVolume(), w: w}
}

// Open writes the WAVE header for the given format
func (f *WAVFile) Open(sampleRate, channels, bitDepth int) error {
	if f.enc != nil {
		return fmt.Errorf("output already open")
	}
	if bitDepth != 16 {
		log.Printf("Warning: WAV output writes 16-bit samples, ignoring requested bitDepth=%d", bitDepth)
	}

	w := f.w
	if w == nil {
		file, err := os.Create(f.path)
		if err != nil {
			return fmt.Errorf("failed to create wav file: %w", err)
		}
		f.file = file
		w = file
	}

	f.enc = wav.NewEncoder(w, sampleRate, 16, channels, wavFormatPCM)
	f.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	return nil
}

// Write appends samples to the file
func (f *WAVFile) Write(samples []int32) error {
	if f.enc == nil {
		return fmt.Errorf("output not initialized")
	}

	scaled := f.apply(samples)

	data := f.buf.Data[:0]
	for _, s := range scaled {
		data = append(data, int(audio.SampleToInt16(s)))
	}
	f.buf.Data = data

	if err := f.enc.Write(f.buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	f.samples += int64(len(samples))
	return nil
}

// Samples returns the number of samples written so far
func (f *WAVFile) Samples() int64 {
	return f.samples
}

// Close finalizes the WAVE header and closes the file
func (f *WAVFile) Close() error {
	var err error
	if f.enc != nil {
		err = f.enc.Close()
		f.enc = nil
	}
	if f.file != nil {
		if cerr := f.file.Close(); err == nil {
			err = cerr
		}
		f.file = nil
	}
	return err
}
