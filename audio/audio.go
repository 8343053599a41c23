// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Source is a decoded, interleaved sample stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with
	// err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Reader hands out deinterleaved frames, one buffer per channel.
//
// Read fills at most RemainingFrames() frames into every buffer whose index
// is below Channels(); buffers past the reader's channel count are left
// untouched. It returns the number of frames written and advances the
// cursor by the same amount.
type Reader interface {
	Channels() int
	SampleRate() int
	Frames() int
	RemainingFrames() int
	Read(buffers [][]float32) int
	Reset()
}

// Writer consumes deinterleaved frames, one buffer per channel.
type Writer interface {
	Write(buffers [][]float32) error
	Close() error
}

// WriterFactory creates a Writer for path with the given layout.
type WriterFactory func(path string, channels, sampleRate int) (Writer, error)

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForPath looks up the decoder registered for the extension of path.
func (r *Registry) ForPath(path string) (Decoder, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, false
	}

	return r.Get(ext)
}
