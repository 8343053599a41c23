// SPDX-License-Identifier: EPL-2.0

// Package calibration turns a requested playback level into per-channel
// linear gains from the measured RMS of a whole source.
package calibration

import (
	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/utils"
)

// Computer holds the RMS of every channel of one source.
type Computer struct {
	rms []float64
}

// NewComputer reads r from start to end, then resets it so playback
// starts from the first frame. A *audio.MemoryReader is measured in place.
func NewComputer(r audio.Reader) *Computer {
	r.Reset()
	defer r.Reset()

	if m, ok := r.(*audio.MemoryReader); ok {
		channels := make([][]float32, m.Channels())
		for i := range channels {
			channels[i] = m.Channel(i)
		}
		return NewComputerFromChannels(channels)
	}

	channels := make([][]float32, r.Channels())
	views := make([][]float32, r.Channels())
	for i := range channels {
		channels[i] = make([]float32, r.Frames())
	}

	for read := 0; r.RemainingFrames() > 0; {
		for i := range channels {
			views[i] = channels[i][read:]
		}

		n := r.Read(views)
		if n == 0 {
			break
		}
		read += n
	}

	return NewComputerFromChannels(channels)
}

// NewComputerFromChannels measures already deinterleaved samples.
func NewComputerFromChannels(channels [][]float32) *Computer {
	rms := make([]float64, len(channels))
	for i, ch := range channels {
		rms[i] = utils.RMS(ch)
	}

	return &Computer{rms: rms}
}

func (c *Computer) Channels() int { return len(c.rms) }

// RMS of channel, or 0 when channel is out of range.
func (c *Computer) RMS(channel int) float64 {
	if channel < 0 || channel >= len(c.rms) {
		return 0
	}

	return c.rms[channel]
}

// SignalScale is the gain that brings channel to levelDB (dB relative to
// digital full scale). Out of range channels and silent channels get 0.
func (c *Computer) SignalScale(channel int, levelDB float64) float64 {
	rms := c.RMS(channel)
	if rms == 0 {
		return 0
	}

	return utils.DBToAmplitude(levelDB) / rms
}

// Scales returns SignalScale for every channel.
func (c *Computer) Scales(levelDB float64) []float64 {
	scales := make([]float64, len(c.rms))
	for i := range scales {
		scales[i] = c.SignalScale(i, levelDB)
	}

	return scales
}

// DigitalLevel converts a sound pressure level to dB relative to full
// scale, given the SPL that full scale produces on the playback rig.
func DigitalLevel(levelSPL, fullScaleSPL float64) float64 {
	return levelSPL - fullScaleSPL
}
