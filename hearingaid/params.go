// SPDX-License-Identifier: EPL-2.0

package hearingaid

import (
	"fmt"

	"github.com/ik5/audsim/utils"
)

// Params configure the processor for one ear. ChunkSize is the block the
// processor works on and therefore its latency; WindowSize is the number of
// samples the level is measured over. FullScaleSPL is the sound pressure
// level a full scale sine produces on the playback rig.
type Params struct {
	Prescription Prescription
	AttackMs     float64
	ReleaseMs    float64
	ChunkSize    int
	WindowSize   int
	SampleRate   int
	FullScaleSPL float64
}

// Validate reports the first construction problem. Chunk and window sizes
// that are not powers of two are rejected with ErrNotPowerOfTwo.
func (p Params) Validate() error {
	if !utils.IsPowerOfTwo(p.ChunkSize) {
		return fmt.Errorf("%w: chunk size %d", ErrNotPowerOfTwo, p.ChunkSize)
	}
	if !utils.IsPowerOfTwo(p.WindowSize) {
		return fmt.Errorf("%w: window size %d", ErrNotPowerOfTwo, p.WindowSize)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, p.SampleRate)
	}
	if p.AttackMs <= 0 || p.ReleaseMs <= 0 {
		return fmt.Errorf("%w: attack %v ms, release %v ms", ErrInvalidParams, p.AttackMs, p.ReleaseMs)
	}

	return p.Prescription.Validate()
}
