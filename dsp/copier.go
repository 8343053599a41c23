// SPDX-License-Identifier: EPL-2.0

package dsp

// ChannelCopier copies channel 0 into every other channel. It turns a mono
// source into identical ear signals ahead of per-ear processing.
type ChannelCopier struct{}

func (ChannelCopier) Process(buffers [][]float32) {
	if len(buffers) < 2 {
		return
	}

	for _, b := range buffers[1:] {
		copy(b, buffers[0])
	}
}

func (ChannelCopier) GroupDelay() int { return 0 }

// Pipeline runs channel processors in order.
type Pipeline struct {
	stages []ChannelProcessor
}

func NewPipeline(stages ...ChannelProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Process(buffers [][]float32) {
	for _, s := range p.stages {
		s.Process(buffers)
	}
}

// GroupDelay is the sum of the stages' delays.
func (p *Pipeline) GroupDelay() int {
	total := 0
	for _, s := range p.stages {
		total += s.GroupDelay()
	}

	return total
}
