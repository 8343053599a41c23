// SPDX-License-Identifier: EPL-2.0

package player

import "fmt"

// Result tells the device what to do after a callback.
type Result int

const (
	// Continue asks for the next buffer.
	Continue Result = iota
	// Complete marks the buffer just filled as the last one. The device
	// plays it out and delivers no further callbacks.
	Complete
)

// Callback fills one cycle of deinterleaved output in place. It runs on
// the device's real-time thread.
type Callback func(buffers [][]float32) Result

// Format of the output stream. FramesPerBuffer is the largest cycle the
// callback is handed; backends split bigger device periods.
type Format struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidFormat, f)
	}

	return nil
}

// Device is an output stream that pulls audio through a Callback.
//
// Open allocates everything the stream needs; Start and Stop may then be
// called any number of times. Stop must not be called from the callback.
type Device interface {
	Open(Format, Callback) error
	Start() error
	Stop() error
	Close() error
}

// Drainer is implemented by devices that still hold queued audio after the
// callback reported Complete. Drain blocks until that audio has been
// played or stop is closed. The player drains before it stops the device.
type Drainer interface {
	Drain(stop <-chan struct{}) error
}
