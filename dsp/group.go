// SPDX-License-Identifier: EPL-2.0

package dsp

// Group runs one processor per channel. Processor i handles buffers[i];
// channels without a processor are left untouched and processors without a
// channel are skipped.
type Group struct {
	processors []Processor
}

func NewGroup(processors ...Processor) *Group {
	return &Group{processors: processors}
}

func (g *Group) Add(p Processor) *Group {
	g.processors = append(g.processors, p)
	return g
}

func (g *Group) Len() int { return len(g.processors) }

func (g *Group) Process(buffers [][]float32) {
	for i := range min(len(buffers), len(g.processors)) {
		g.processors[i].Process(buffers[i])
	}
}

// GroupDelay is the largest member delay. Channels play in lock step, so
// the group settles only when its slowest channel has.
func (g *Group) GroupDelay() int {
	delay := 0
	for _, p := range g.processors {
		delay = max(delay, p.GroupDelay())
	}

	return delay
}
