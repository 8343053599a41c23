// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

const (
	drainChunkFrames = 4096
	maxEmptyReads    = 100
)

// MemoryReader holds a whole signal deinterleaved in memory and serves it
// frame by frame. It implements Reader.
type MemoryReader struct {
	channels   [][]float32
	sampleRate int
	frames     int
	cursor     int
}

// NewMemoryReader drains src completely. src is not closed.
func NewMemoryReader(src Source) (*MemoryReader, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	data := make([][]float32, channels)
	buf := make([]float32, drainChunkFrames*channels)
	empty := 0

	for {
		n, err := src.ReadSamples(buf)
		if n == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				return nil, fmt.Errorf("draining source: %w", io.ErrNoProgress)
			}
			continue
		}
		empty = 0

		frames := n / channels
		for f := range frames {
			base := f * channels
			for c := range channels {
				data[c] = append(data[c], buf[base+c])
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("draining source: %w", err)
		}
	}

	return NewMemoryReaderFromChannels(src.SampleRate(), data), nil
}

// NewMemoryReaderFromChannels wraps already deinterleaved samples. The
// frame count is the length of the shortest channel.
func NewMemoryReaderFromChannels(sampleRate int, channels [][]float32) *MemoryReader {
	frames := 0
	for i, ch := range channels {
		if i == 0 || len(ch) < frames {
			frames = len(ch)
		}
	}

	return &MemoryReader{
		channels:   channels,
		sampleRate: sampleRate,
		frames:     frames,
	}
}

func (m *MemoryReader) Channels() int        { return len(m.channels) }
func (m *MemoryReader) SampleRate() int      { return m.sampleRate }
func (m *MemoryReader) Frames() int          { return m.frames }
func (m *MemoryReader) RemainingFrames() int { return m.frames - m.cursor }
func (m *MemoryReader) Reset()               { m.cursor = 0 }

// Channel returns the full sample slice of channel i without copying.
func (m *MemoryReader) Channel(i int) []float32 {
	return m.channels[i][:m.frames]
}

func (m *MemoryReader) Read(buffers [][]float32) int {
	if len(buffers) == 0 {
		return 0
	}

	n := min(len(buffers[0]), m.RemainingFrames())
	if n <= 0 {
		return 0
	}

	for i := range min(len(buffers), len(m.channels)) {
		copy(buffers[i][:n], m.channels[i][m.cursor:m.cursor+n])
	}
	m.cursor += n

	return n
}
