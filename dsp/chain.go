// SPDX-License-Identifier: EPL-2.0

package dsp

// Chain runs processors in order on the same channel.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Add appends p and returns the chain for chaining calls.
func (c *Chain) Add(p Processor) *Chain {
	c.processors = append(c.processors, p)
	return c
}

func (c *Chain) Len() int { return len(c.processors) }

func (c *Chain) Process(buffer []float32) {
	for _, p := range c.processors {
		p.Process(buffer)
	}
}

// GroupDelay is the sum of the members' delays.
func (c *Chain) GroupDelay() int {
	total := 0
	for _, p := range c.processors {
		total += p.GroupDelay()
	}

	return total
}
