// SPDX-License-Identifier: EPL-2.0

package dsp

// FIRFilter is a streaming direct-form FIR filter. The delay line carries
// the last len(b)-1 input samples between calls, so processing a signal in
// any number of chunks gives the same result as processing it at once.
type FIRFilter struct {
	b     []float32
	delay []float32 // oldest first
	next  []float32
}

// NewFIRFilter copies b. An empty b returns ErrInvalidCoefficients.
func NewFIRFilter(b []float32) (*FIRFilter, error) {
	if len(b) == 0 {
		return nil, ErrInvalidCoefficients
	}

	order := len(b) - 1

	return &FIRFilter{
		b:     append([]float32(nil), b...),
		delay: make([]float32, order),
		next:  make([]float32, order),
	}, nil
}

// Order is len(b)-1, the number of past samples each output depends on.
func (f *FIRFilter) Order() int { return len(f.delay) }

// GroupDelay is the filter order: the length of the tail that follows the
// last input sample.
func (f *FIRFilter) GroupDelay() int { return len(f.delay) }

// Reset clears the delay line.
func (f *FIRFilter) Reset() {
	clear(f.delay)
}

func (f *FIRFilter) Process(x []float32) {
	n := len(x)
	if n == 0 {
		return
	}

	order := len(f.delay)

	// The next delay line is the tail of delay followed by x.
	if n >= order {
		copy(f.next, x[n-order:])
	} else {
		copy(f.next, f.delay[n:])
		copy(f.next[order-n:], x)
	}

	// Walk backwards so x[j] for j <= i still holds input when read.
	for i := n - 1; i >= 0; i-- {
		var acc float64
		for k, bk := range f.b {
			j := i - k
			var s float32
			if j >= 0 {
				s = x[j]
			} else {
				s = f.delay[order+j]
			}
			acc += float64(bk) * float64(s)
		}
		x[i] = float32(acc)
	}

	f.delay, f.next = f.next, f.delay
}
