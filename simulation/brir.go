// SPDX-License-Identifier: EPL-2.0

package simulation

import (
	"fmt"
	"os"

	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/formats/wav"
)

// BRIR is a binaural room impulse response: one FIR kernel per ear.
type BRIR struct {
	Left       []float32
	Right      []float32
	SampleRate int
}

// Ear returns the kernel for output channel i (0 left, 1 right).
func (b BRIR) Ear(i int) []float32 {
	if i == 0 {
		return b.Left
	}

	return b.Right
}

// Validate rejects a BRIR with an empty ear.
func (b BRIR) Validate() error {
	if len(b.Left) == 0 {
		return fmt.Errorf("%w: left", ErrEmptyBRIRChannel)
	}
	if len(b.Right) == 0 {
		return fmt.Errorf("%w: right", ErrEmptyBRIRChannel)
	}

	return nil
}

// LoadBRIR reads a stereo WAV file. A mono file has no right ear and is
// rejected with ErrEmptyBRIRChannel.
func LoadBRIR(path string) (BRIR, error) {
	f, err := os.Open(path)
	if err != nil {
		return BRIR{}, &audio.CreateError{Path: path, Err: err}
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		return BRIR{}, &audio.CreateError{Path: path, Err: err}
	}
	defer src.Close()

	r, err := audio.NewMemoryReader(src)
	if err != nil {
		return BRIR{}, &audio.CreateError{Path: path, Err: err}
	}

	b := BRIR{SampleRate: r.SampleRate(), Left: r.Channel(0)}
	if r.Channels() > 1 {
		b.Right = r.Channel(1)
	}

	if err := b.Validate(); err != nil {
		return BRIR{}, fmt.Errorf("%s: %w", path, err)
	}

	return b, nil
}
