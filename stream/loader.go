// SPDX-License-Identifier: EPL-2.0

// Package stream drives a processor from a frame reader one cycle at a
// time, padding silence once the reader runs dry so the processor's tail
// is emitted before the stream reports completion.
package stream

import (
	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/dsp"
)

// State of a Loader as seen from outside.
type State int

const (
	// Streaming means the reader still has frames.
	Streaming State = iota
	// Draining means the reader is exhausted and silence is flushing the
	// processor's group delay.
	Draining
	// Complete means every real sample and its tail have been emitted.
	Complete
)

func (s State) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Loader reads, pads and processes one cycle per Load call. It never
// allocates after construction and is safe to call from a device callback.
type Loader struct {
	reader    audio.Reader
	processor dsp.ChannelProcessor
	padded    int
}

func NewLoader(reader audio.Reader, processor dsp.ChannelProcessor) *Loader {
	return &Loader{reader: reader, processor: processor}
}

func (l *Loader) Reader() audio.Reader            { return l.reader }
func (l *Loader) Processor() dsp.ChannelProcessor { return l.processor }

// Padded is the number of zero frames pushed since the last Reset.
func (l *Loader) Padded() int { return l.padded }

// Load fills buffers from the reader, replaces any shortfall at the end of
// every buffer with silence and then runs the processor over the result.
// All buffers must have the same length.
func (l *Loader) Load(buffers [][]float32) {
	if len(buffers) == 0 {
		return
	}

	frames := len(buffers[0])
	zeros := max(0, frames-l.reader.RemainingFrames())

	l.reader.Read(buffers)

	if zeros > 0 {
		for _, b := range buffers {
			clear(b[frames-zeros:])
		}
		l.padded += zeros
	}

	l.processor.Process(buffers)
}

// Complete reports whether the reader is exhausted and enough silence has
// gone through to flush the processor's group delay.
func (l *Loader) Complete() bool {
	return l.reader.RemainingFrames() == 0 && l.padded >= l.processor.GroupDelay()
}

func (l *Loader) State() State {
	switch {
	case l.Complete():
		return Complete
	case l.reader.RemainingFrames() == 0:
		return Draining
	default:
		return Streaming
	}
}

// Reset zeroes the padding counter. The reader position is not touched.
func (l *Loader) Reset() {
	l.padded = 0
}

// Rewind resets both the reader and the padding counter so the same
// prepared source can be played again.
func (l *Loader) Rewind() {
	l.reader.Reset()
	l.padded = 0
}
