// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/utils"
)

// DefaultBitDepth is used by NewFileWriter.
const DefaultBitDepth = 16

// Writer encodes deinterleaved float frames as integer PCM WAV.
// It implements audio.Writer.
type Writer struct {
	enc      *gowav.Encoder
	closer   io.Closer
	channels int
	bitDepth int
	buf      *goaudio.IntBuffer
}

// NewWriter encodes to w. The RIFF sizes are patched on Close, so w must be
// seekable.
func NewWriter(w io.WriteSeeker, channels, sampleRate, bitDepth int) (*Writer, error) {
	if channels <= 0 {
		return nil, audio.ErrInvalidChannels
	}
	if sampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Writer{
		enc:      gowav.NewEncoder(w, sampleRate, bitDepth, channels, pcmFormat),
		channels: channels,
		bitDepth: bitDepth,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// NewFileWriter creates path and writes 16-bit PCM to it. It matches
// audio.WriterFactory.
func NewFileWriter(path string, channels, sampleRate int) (audio.Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, &audio.CreateError{Path: path, Err: err}
	}

	w, err := NewWriter(file, channels, sampleRate, DefaultBitDepth)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, &audio.CreateError{Path: path, Err: err}
	}
	w.closer = file

	return w, nil
}

// Write interleaves one buffer per channel and encodes it.
func (w *Writer) Write(buffers [][]float32) error {
	if len(buffers) != w.channels {
		return fmt.Errorf("%w: got %d, want %d", audio.ErrBufferCount, len(buffers), w.channels)
	}

	frames := len(buffers[0])
	needed := frames * w.channels
	if cap(w.buf.Data) < needed {
		w.buf.Data = make([]int, needed)
	}
	w.buf.Data = w.buf.Data[:needed]

	for f := range frames {
		for c, ch := range buffers {
			v := utils.FloatToInt(ch[f], w.bitDepth)
			if w.bitDepth == 8 {
				v += 128
			}
			w.buf.Data[f*w.channels+c] = v
		}
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return nil
}

// Close finalises the header and closes the file opened by NewFileWriter.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}
	return nil
}
