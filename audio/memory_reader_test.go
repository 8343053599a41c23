// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/audsim/internal/audiotest"
)

func TestNewMemoryReader_Deinterleaves(t *testing.T) {
	t.Parallel()

	src := audiotest.NewInterleavedSource(44100, 2, []float32{1, 2, 3, 4, 5, 6})

	r, err := NewMemoryReader(src)
	if err != nil {
		t.Fatalf("NewMemoryReader() error = %v", err)
	}

	if r.Channels() != 2 || r.Frames() != 3 || r.SampleRate() != 44100 {
		t.Fatalf("reader = %d ch, %d frames, %d Hz", r.Channels(), r.Frames(), r.SampleRate())
	}

	want := [][]float32{{1, 3, 5}, {2, 4, 6}}
	for c := range want {
		for i, v := range want[c] {
			if got := r.Channel(c)[i]; got != v {
				t.Errorf("Channel(%d)[%d] = %v, want %v", c, i, got, v)
			}
		}
	}
}

type stalledSource struct{}

func (stalledSource) SampleRate() int                    { return 8000 }
func (stalledSource) Channels() int                      { return 1 }
func (stalledSource) ReadSamples([]float32) (int, error) { return 0, nil }
func (stalledSource) Close() error                       { return nil }

func TestNewMemoryReader_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryReader(stalledSource{}); !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("stalled source error = %v, want io.ErrNoProgress", err)
	}

	if _, err := NewMemoryReader(audiotest.NewSilentSource(8000, 0, 10)); !errors.Is(err, ErrInvalidChannels) {
		t.Errorf("zero channel error = %v, want ErrInvalidChannels", err)
	}
}

func TestMemoryReader_ReadAdvancesAndStops(t *testing.T) {
	t.Parallel()

	r := NewMemoryReaderFromChannels(8000, [][]float32{{1, 2, 3}})
	buf := [][]float32{make([]float32, 2)}

	if n := r.Read(buf); n != 2 || buf[0][0] != 1 || buf[0][1] != 2 {
		t.Fatalf("first Read() = %d %v", n, buf[0])
	}
	if r.RemainingFrames() != 1 {
		t.Errorf("RemainingFrames() = %d, want 1", r.RemainingFrames())
	}

	buf[0][0], buf[0][1] = 9, 9
	if n := r.Read(buf); n != 1 || buf[0][0] != 3 || buf[0][1] != 9 {
		t.Fatalf("second Read() = %d %v, want 1 [3 9]", n, buf[0])
	}

	if n := r.Read(buf); n != 0 {
		t.Errorf("Read() after end = %d, want 0", n)
	}

	r.Reset()
	if r.RemainingFrames() != 3 {
		t.Errorf("RemainingFrames() after Reset = %d, want 3", r.RemainingFrames())
	}
}

func TestMemoryReader_ExtraBuffersUntouched(t *testing.T) {
	t.Parallel()

	r := NewMemoryReaderFromChannels(8000, [][]float32{{1, 2}})
	buf := [][]float32{{0, 0}, {7, 7}}

	r.Read(buf)

	if buf[1][0] != 7 || buf[1][1] != 7 {
		t.Errorf("extra channel = %v, want untouched [7 7]", buf[1])
	}
}

func TestMemoryReader_ShortestChannelWins(t *testing.T) {
	t.Parallel()

	r := NewMemoryReaderFromChannels(8000, [][]float32{{1, 2, 3}, {1}})
	if r.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", r.Frames())
	}
}

func TestMemoryReader_ReadZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	r := NewMemoryReaderFromChannels(8000, [][]float32{make([]float32, 1<<16), make([]float32, 1<<16)})
	buf := [][]float32{make([]float32, 256), make([]float32, 256)}

	allocs := testing.AllocsPerRun(100, func() {
		if r.RemainingFrames() == 0 {
			r.Reset()
		}
		r.Read(buf)
	})

	if allocs > 0 {
		t.Errorf("MemoryReader.Read() allocated %v times, want 0", allocs)
	}
}
