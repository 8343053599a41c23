// SPDX-License-Identifier: EPL-2.0

package dsp

// Processor transforms a single channel in place.
type Processor interface {
	Process(buffer []float32)
	// GroupDelay is the latency the processor adds, in samples.
	GroupDelay() int
}

// ChannelProcessor transforms every channel of a cycle in place. All
// buffers passed to one call have the same length.
type ChannelProcessor interface {
	Process(buffers [][]float32)
	GroupDelay() int
}

// Scalar multiplies a channel by a fixed gain.
type Scalar struct {
	gain float32
}

func NewScalar(gain float64) *Scalar {
	return &Scalar{gain: float32(gain)}
}

func (s *Scalar) Gain() float64 { return float64(s.gain) }

func (s *Scalar) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] *= s.gain
	}
}

func (*Scalar) GroupDelay() int { return 0 }
