// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audsim/utils"
)

// lowPassCutoff is the anti-alias cutoff as a fraction of the target rate,
// just under its Nyquist frequency.
const lowPassCutoff = 0.45

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves channel count.
// When downsampling, incoming frames pass through a one-pole low-pass
// whose cutoff follows the target rate.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// Interpolation window: window[0] = t-1, window[1] = t0, window[2] = t+1,
	// window[3] = t+2. Output is taken between window[1] and window[2].
	window [4][]float32
	real   [4]bool
	primed bool

	// Fractional position between window[1] and window[2].
	pos float64

	// Buffered interleaved input.
	srcBuf []float32
	srcPos int
	srcLen int
	eof    bool

	lowPass     bool
	seeded      bool
	filterAlpha float32
	filterState []float32
}

// lowPassAlpha is the one-pole smoothing factor for a cutoff of
// lowPassCutoff*dstRate at a source rate ratio times higher.
func lowPassAlpha(ratio float64) float32 {
	return float32(1 - math.Exp(-2*math.Pi*lowPassCutoff/ratio))
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, 4096*channels),
		lowPass:     ratio > 1.0,
		filterAlpha: lowPassAlpha(ratio),
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst. It reports false once
// the source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	empty := 0
	for r.srcLen-r.srcPos < r.channels {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcPos = 0
		r.srcLen = n - n%r.channels

		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("resampler: %w", err)
		} else if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return false, fmt.Errorf("resampler: %w", io.ErrNoProgress)
			}
		}
	}

	copy(dst, r.srcBuf[r.srcPos:r.srcPos+r.channels])
	r.srcPos += r.channels

	if r.lowPass {
		if !r.seeded {
			// Start the filter at the first frame's level.
			copy(r.filterState, dst)
			r.seeded = true
		}
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	ok, err := r.nextFrame(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.window[1])
	r.real[0], r.real[1] = true, true

	for i := 2; i < 4; i++ {
		if r.real[i], err = r.nextFrame(r.window[i]); err != nil {
			return err
		}
	}

	r.primed = true
	return nil
}

func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.real[:3], r.real[1:])
	r.window[3] = first

	var err error
	r.real[3], err = r.nextFrame(r.window[3])
	return err
}

// ReadSamples produces interleaved samples at the target rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	framesNeeded := len(dst) / r.channels
	written := 0

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.real[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels:]
		for c := range r.channels {
			y0 := r.window[0][c]
			y1 := r.window[1][c]
			y2 := y1
			if r.real[2] {
				y2 = r.window[2][c]
			}
			y3 := y2
			if r.real[3] {
				y3 = r.window[3][c]
			}

			out[c] = utils.CubicInterpolate(y0, y1, y2, y3, x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
