// SPDX-License-Identifier: EPL-2.0

package hearingaid

import (
	"math"

	"github.com/ik5/audsim/dsp"
	"github.com/ik5/audsim/utils"
)

// Factory builds the hearing-aid processor for one ear.
type Factory interface {
	Make(Params) (dsp.Processor, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(Params) (dsp.Processor, error)

func (f FactoryFunc) Make(p Params) (dsp.Processor, error) { return f(p) }

// DefaultFactory builds a broadband Compressor.
type DefaultFactory struct{}

func (DefaultFactory) Make(p Params) (dsp.Processor, error) {
	return NewCompressor(p)
}

// Compressor is a broadband wide dynamic range compressor driven by the
// average of a prescription's bands. The signal is delayed by one chunk
// so gain changes line up with the level that caused them.
type Compressor struct {
	// Gain curve in dB SPL.
	kneepoint   float64
	gain        float64
	slope       float64 // 1 - 1/ratio
	limit       float64
	fullScale   float64
	attack      float64
	release     float64
	chunkSize   int
	fifo        []float32
	fifoPos     int
	window      []float64 // squared input samples
	windowPos   int
	windowSum   float64
	envelope    float64
	currentGain float64
}

func NewCompressor(p Params) (*Compressor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sr := float64(p.SampleRate)
	c := &Compressor{
		kneepoint: mean(p.Prescription.Kneepoints),
		gain:      mean(p.Prescription.KneepointGains),
		slope:     1 - 1/mean(p.Prescription.CompressionRatios),
		limit:     mean(p.Prescription.LimitingThresholds),
		fullScale: p.FullScaleSPL,
		attack:    1 - math.Exp(-math.Ln2/(p.AttackMs*0.001*sr)),
		release:   math.Exp(-math.Ln2 / (p.ReleaseMs * 0.001 * sr)),
		chunkSize: p.ChunkSize,
		fifo:      make([]float32, p.ChunkSize),
		window:    make([]float64, p.WindowSize),
	}
	c.Reset()

	return c, nil
}

func (c *Compressor) GroupDelay() int { return c.chunkSize }

// Gain is the linear gain applied to the most recent output sample.
func (c *Compressor) Gain() float64 { return c.currentGain }

func (c *Compressor) Reset() {
	clear(c.fifo)
	clear(c.window)
	c.fifoPos = 0
	c.windowPos = 0
	c.windowSum = 0
	c.envelope = 0
	c.currentGain = utils.DBToAmplitude(c.gain)
}

func (c *Compressor) Process(buffer []float32) {
	for i, x := range buffer {
		sq := float64(x) * float64(x)
		c.windowSum += sq - c.window[c.windowPos]
		c.window[c.windowPos] = sq
		c.windowPos = (c.windowPos + 1) & (len(c.window) - 1)
		if c.windowSum < 0 {
			c.windowSum = 0
		}

		level := math.Sqrt(c.windowSum / float64(len(c.window)))
		if level > c.envelope {
			c.envelope += (level - c.envelope) * c.attack
		} else {
			c.envelope = level + (c.envelope-level)*c.release
		}
		c.currentGain = c.gainFor(c.envelope)

		delayed := c.fifo[c.fifoPos]
		c.fifo[c.fifoPos] = x
		c.fifoPos = (c.fifoPos + 1) & (c.chunkSize - 1)

		buffer[i] = float32(float64(delayed) * c.currentGain)
	}
}

// gainFor maps a linear input level to a linear gain.
func (c *Compressor) gainFor(level float64) float64 {
	spl := c.fullScale + utils.AmplitudeToDB(level)

	g := c.gain
	if spl > c.kneepoint {
		g -= (spl - c.kneepoint) * c.slope
	}
	if spl+g > c.limit {
		g = c.limit - spl
	}

	return utils.DBToAmplitude(g)
}
