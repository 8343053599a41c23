// SPDX-License-Identifier: EPL-2.0

package audiotest

// AddOne adds 1 to every sample. It satisfies dsp.Processor.
type AddOne struct{}

func (AddOne) Process(buffer []float32) {
	for i := range buffer {
		buffer[i]++
	}
}

func (AddOne) GroupDelay() int { return 0 }

// Delay is an identity processor that reports a fixed group delay.
type Delay int

func (Delay) Process([]float32) {}

func (d Delay) GroupDelay() int { return int(d) }

// Recorder keeps a copy of everything it processed.
type Recorder struct {
	Calls   int
	Samples []float32
	Delay   int
}

func (r *Recorder) Process(buffer []float32) {
	r.Calls++
	r.Samples = append(r.Samples, buffer...)
}

func (r *Recorder) GroupDelay() int { return r.Delay }

// ChannelAddOne adds 1 to every sample of every channel. It satisfies
// dsp.ChannelProcessor.
type ChannelAddOne struct {
	Delay int
}

func (c ChannelAddOne) Process(buffers [][]float32) {
	for _, b := range buffers {
		AddOne{}.Process(b)
	}
}

func (c ChannelAddOne) GroupDelay() int { return c.Delay }

// ChannelIdentity leaves buffers untouched and reports a fixed delay.
type ChannelIdentity struct {
	Delay int
}

func (ChannelIdentity) Process([][]float32) {}

func (c ChannelIdentity) GroupDelay() int { return c.Delay }
