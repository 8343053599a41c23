// SPDX-License-Identifier: EPL-2.0

package calibration

import (
	"math"
	"testing"

	"github.com/ik5/audsim/audio"
)

const epsilon = 1e-9

func interleavedReader(t *testing.T, channels int, samples []float32) *audio.MemoryReader {
	t.Helper()

	data := make([][]float32, channels)
	for i, s := range samples {
		data[i%channels] = append(data[i%channels], s)
	}

	return audio.NewMemoryReaderFromChannels(44100, data)
}

func TestSignalScale_Stereo(t *testing.T) {
	t.Parallel()

	// [1..6] split into [1 3 5] and [2 4 6].
	c := NewComputer(interleavedReader(t, 2, []float32{1, 2, 3, 4, 5, 6}))

	rms0 := math.Sqrt((1 + 9 + 25) / 3.0)
	rms1 := math.Sqrt((4 + 16 + 36) / 3.0)

	tests := []struct {
		channel int
		level   float64
		want    float64
	}{
		{0, 7, math.Pow(10, 7.0/20) / rms0},
		{1, 7, math.Pow(10, 7.0/20) / rms1},
		{0, 0, 1 / rms0},
		{1, -20, 0.1 / rms1},
	}

	for _, tt := range tests {
		if got := c.SignalScale(tt.channel, tt.level); math.Abs(got-tt.want) > epsilon {
			t.Errorf("SignalScale(%d, %v) = %v, want %v", tt.channel, tt.level, got, tt.want)
		}
	}
}

func TestSignalScale_OutOfRange(t *testing.T) {
	t.Parallel()

	c := NewComputer(interleavedReader(t, 2, []float32{1, 2, 3, 4}))

	for _, ch := range []int{-1, 2, 100} {
		if got := c.SignalScale(ch, 0); got != 0 {
			t.Errorf("SignalScale(%d, 0) = %v, want 0", ch, got)
		}
	}
}

func TestSignalScale_SilentChannel(t *testing.T) {
	t.Parallel()

	c := NewComputerFromChannels([][]float32{{0, 0, 0}, {0.5, -0.5, 0.5}})

	if got := c.SignalScale(0, 0); got != 0 {
		t.Errorf("SignalScale on silence = %v, want 0", got)
	}
	if got := c.SignalScale(1, 0); math.Abs(got-2) > epsilon {
		t.Errorf("SignalScale(1, 0) = %v, want 2", got)
	}
	if got := c.SignalScale(0, 0); math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("SignalScale on silence is not finite: %v", got)
	}
}

func TestNewComputer_ResetsReader(t *testing.T) {
	t.Parallel()

	r := interleavedReader(t, 1, []float32{1, 2, 3, 4})

	// Move the cursor so the computer has to rewind first.
	r.Read([][]float32{make([]float32, 3)})

	c := NewComputer(r)

	if r.RemainingFrames() != r.Frames() {
		t.Errorf("RemainingFrames() = %d after calibration, want %d", r.RemainingFrames(), r.Frames())
	}

	want := math.Sqrt((1 + 4 + 9 + 16) / 4.0)
	if math.Abs(c.RMS(0)-want) > epsilon {
		t.Errorf("RMS(0) = %v, want %v over the whole signal", c.RMS(0), want)
	}
}

func TestScales(t *testing.T) {
	t.Parallel()

	c := NewComputerFromChannels([][]float32{{1, -1}, {0, 0}, {0.5, 0.5}})
	got := c.Scales(0)

	want := []float64{1, 0, 2}
	if len(got) != len(want) {
		t.Fatalf("len(Scales) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("Scales[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDigitalLevel(t *testing.T) {
	t.Parallel()

	if got := DigitalLevel(65, 119); got != -54 {
		t.Errorf("DigitalLevel(65, 119) = %v, want -54", got)
	}
}

// streamReader hides the concrete reader type so NewComputer has to read
// through the Reader interface, in small blocks.
type streamReader struct {
	audio.Reader
	block int
}

func (s streamReader) Read(buffers [][]float32) int {
	views := make([][]float32, len(buffers))
	for i, b := range buffers {
		views[i] = b[:min(len(b), s.block)]
	}

	return s.Reader.Read(views)
}

func TestNewComputer_MemoryReaderMatchesStreamed(t *testing.T) {
	t.Parallel()

	samples := []float32{0.1, -0.2, 0.3, 0.4, -0.5, 0.6, 0.7, -0.8}

	direct := interleavedReader(t, 2, samples)
	direct.Read([][]float32{make([]float32, 3), make([]float32, 3)})

	streamed := interleavedReader(t, 2, samples)

	a := NewComputer(direct)
	b := NewComputer(streamReader{Reader: streamed, block: 1})

	// The cursor position before measuring does not matter, and both
	// readers are rewound afterwards.
	if direct.RemainingFrames() != direct.Frames() {
		t.Errorf("direct reader not reset: %d of %d frames left", direct.RemainingFrames(), direct.Frames())
	}
	if streamed.RemainingFrames() != streamed.Frames() {
		t.Errorf("streamed reader not reset: %d of %d frames left", streamed.RemainingFrames(), streamed.Frames())
	}

	for ch := range 2 {
		if math.Abs(a.RMS(ch)-b.RMS(ch)) > epsilon {
			t.Errorf("RMS(%d) = %v in place, %v streamed", ch, a.RMS(ch), b.RMS(ch))
		}
	}
}

func TestNewComputer_MemoryReaderZeroCopy(t *testing.T) {
	// Not parallel: testing.AllocsPerRun panics inside parallel tests.
	r := interleavedReader(t, 1, make([]float32, 1<<16))

	allocs := testing.AllocsPerRun(10, func() {
		NewComputer(r)
	})

	// The Computer, its rms slice and the channel header slice only.
	if allocs > 3 {
		t.Errorf("NewComputer allocated %v times, want at most 3", allocs)
	}
}
