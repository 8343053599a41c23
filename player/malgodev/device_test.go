// SPDX-License-Identifier: EPL-2.0

package malgodev

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/ik5/audsim/player"
	"github.com/stretchr/testify/assert"
)

func decode(out []byte) []float32 {
	samples := make([]float32, len(out)/bytesPerSample)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(out[i*bytesPerSample:]))
	}

	return samples
}

// counter fills each channel with increasing values, offset by 100 per
// channel, and completes after the given number of cycles.
func counter(cycles int) (player.Callback, *[]int) {
	var sizes []int
	next := float32(1)

	return func(buffers [][]float32) player.Result {
		sizes = append(sizes, len(buffers[0]))
		for i := range buffers[0] {
			for c := range buffers {
				buffers[c][i] = next + float32(100*c)
			}
			next++
		}
		if len(sizes) == cycles {
			return player.Complete
		}
		return player.Continue
	}, &sizes
}

func TestData_SplitsPeriodIntoCycles(t *testing.T) {
	t.Parallel()

	cb, sizes := counter(10)
	d := New(nil)
	d.setup(player.Format{SampleRate: 48000, Channels: 2, FramesPerBuffer: 2}, cb)

	out := make([]byte, 5*2*bytesPerSample)
	d.data(out, nil, 5)

	assert.Equal(t, []int{2, 2, 1}, *sizes)
	assert.Equal(t, []float32{1, 101, 2, 102, 3, 103, 4, 104, 5, 105}, decode(out))
}

func TestData_SilenceAfterComplete(t *testing.T) {
	t.Parallel()

	cb, sizes := counter(1)
	d := New(nil)
	d.setup(player.Format{SampleRate: 48000, Channels: 1, FramesPerBuffer: 2}, cb)

	out := make([]byte, 5*bytesPerSample)
	for i := range out {
		out[i] = 0xff
	}
	d.data(out, nil, 5)

	assert.Equal(t, []int{2}, *sizes)
	assert.Equal(t, []float32{1, 2, 0, 0, 0}, decode(out))

	// Later periods are silent and the callback is not called again.
	d.data(out, nil, 5)
	assert.Len(t, *sizes, 1)
	assert.Equal(t, []float32{0, 0, 0, 0, 0}, decode(out))
}

func TestData_ZeroAllocs(t *testing.T) {
	d := New(nil)
	d.setup(player.Format{SampleRate: 48000, Channels: 2, FramesPerBuffer: 256}, func(buffers [][]float32) player.Result {
		return player.Continue
	})
	out := make([]byte, 512*2*bytesPerSample)

	allocs := testing.AllocsPerRun(100, func() {
		d.data(out, nil, 512)
	})
	assert.Zero(t, allocs)
}

func TestStartBeforeOpen(t *testing.T) {
	t.Parallel()

	d := New(nil)
	assert.ErrorIs(t, d.Start(), ErrNotOpen)
	assert.NoError(t, d.Stop())
	assert.NoError(t, d.Close())
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestDrain_WaitsForPeriodAfterComplete(t *testing.T) {
	t.Parallel()

	cb, _ := counter(1)
	d := New(nil)
	d.setup(player.Format{SampleRate: 48000, Channels: 1, FramesPerBuffer: 4}, cb)

	out := make([]byte, 4*bytesPerSample)
	d.data(out, nil, 4)

	drained := make(chan struct{})
	go func() {
		_ = d.Drain(make(chan struct{}))
		close(drained)
	}()

	// The completing period has only been handed to miniaudio.
	assert.Never(t, func() bool { return isClosed(drained) }, 50*time.Millisecond, 5*time.Millisecond)

	d.data(out, nil, 4)
	assert.Eventually(t, func() bool { return isClosed(drained) }, time.Second, time.Millisecond)

	// Further periods do not close the channel twice.
	d.data(out, nil, 4)
}

func TestDrain_Stop(t *testing.T) {
	t.Parallel()

	cb, _ := counter(1)
	d := New(nil)
	d.setup(player.Format{SampleRate: 48000, Channels: 1, FramesPerBuffer: 4}, cb)

	stop := make(chan struct{})
	close(stop)
	assert.NoError(t, d.Drain(stop))
}
