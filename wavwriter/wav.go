// Package wavwriter saves rendered audio as a 16-bit PCM WAV file. Samples
// are buffered in memory and encoded when the writer is closed.
package wavwriter

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth     = 16
	wavFormatPCM = 1
)

// Writer collects interleaved int16 samples for one WAV file.
type Writer struct {
	filename   string
	sampleRate int
	channels   int
	buffer     []int
	closed     bool
}

// New prepares a writer. Nothing touches the disk until Close.
func New(filename string, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("wavwriter: bad format %d Hz, %d channels", sampleRate, channels)
	}
	return &Writer{
		filename:   filename,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Write appends interleaved samples.
func (w *Writer) Write(samples []int16) {
	for _, s := range samples {
		w.buffer = append(w.buffer, int(s))
	}
}

// Frames returns the number of complete sample frames buffered.
func (w *Writer) Frames() int {
	return len(w.buffer) / w.channels
}

// Close encodes the buffered audio to the file.
func (w *Writer) Close() (rerr error) {
	if w.closed {
		return errors.New("wavwriter: already closed")
	}
	w.closed = true

	f, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	// Drop a trailing partial frame.
	data := w.buffer[:w.Frames()*w.channels]

	enc := wav.NewEncoder(f, w.sampleRate, bitDepth, w.channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.channels,
			SampleRate:  w.sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
