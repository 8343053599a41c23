// SPDX-License-Identifier: EPL-2.0

// Package simulation assembles the per-ear processing chains of a hearing
// simulation: calibration gain, optional BRIR convolution and an optional
// hearing-aid stage.
package simulation

import (
	"fmt"

	"github.com/ik5/audsim/dsp"
	"github.com/ik5/audsim/hearingaid"
)

// Request describes the chain to build.
//
// Scales holds one calibration gain per output channel; a missing entry
// silences that channel. BRIR is only used by spatialized modes and
// Prescriptions (one per output channel) only by aided modes. HearingAid
// supplies everything but the prescription. Factory defaults to
// hearingaid.DefaultFactory.
type Request struct {
	Mode          Mode
	Channels      int
	Scales        []float64
	BRIR          BRIR
	Prescriptions []hearingaid.Prescription
	HearingAid    hearingaid.Params
	Factory       hearingaid.Factory
}

// Build validates r and returns the processor for all output channels.
// Every construction error is reported here, never while streaming.
func Build(r Request) (dsp.ChannelProcessor, error) {
	if r.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrChannelCount, r.Channels)
	}

	if r.Mode.Spatialized() {
		if r.Channels != 2 {
			return nil, fmt.Errorf("%w: spatialization needs 2 channels, got %d", ErrChannelCount, r.Channels)
		}
		if err := r.BRIR.Validate(); err != nil {
			return nil, err
		}
	}

	factory := r.Factory
	if factory == nil {
		factory = hearingaid.DefaultFactory{}
	}

	if r.Mode.Aided() && len(r.Prescriptions) < r.Channels {
		return nil, fmt.Errorf("%w: %d prescriptions for %d channels",
			ErrMissingPrescription, len(r.Prescriptions), r.Channels)
	}

	group := dsp.NewGroup()
	for ch := range r.Channels {
		chain, err := buildChannel(r, factory, ch)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		group.Add(chain)
	}

	if r.Mode.Spatialized() {
		// The source is mono; both ears start from the same signal.
		return dsp.NewPipeline(dsp.ChannelCopier{}, group), nil
	}

	return group, nil
}

func buildChannel(r Request, factory hearingaid.Factory, ch int) (*dsp.Chain, error) {
	scale := 0.0
	if ch < len(r.Scales) {
		scale = r.Scales[ch]
	}
	chain := dsp.NewChain(dsp.NewScalar(scale))

	if r.Mode.Spatialized() {
		fir, err := dsp.NewFIRFilter(r.BRIR.Ear(ch))
		if err != nil {
			return nil, err
		}
		chain.Add(fir)
	}

	if r.Mode.Aided() {
		params := r.HearingAid
		params.Prescription = r.Prescriptions[ch]

		aid, err := factory.Make(params)
		if err != nil {
			return nil, err
		}
		chain.Add(aid)
	}

	return chain, nil
}
