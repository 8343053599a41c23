// SPDX-License-Identifier: EPL-2.0

package audsim

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/formats/aiff"
	"github.com/ik5/audsim/formats/mp3"
	"github.com/ik5/audsim/formats/vorbis"
	"github.com/ik5/audsim/formats/wav"
	"github.com/ik5/audsim/internal/tracing"
)

// Options controls how LoadSource shapes a decoded source.
type Options struct {
	// TargetRate is the sample rate of the result. Zero keeps the source
	// rate.
	TargetRate int
	// Mono down-mixes all channels into one.
	Mono       bool
}

// DefaultRegistry returns a registry with every decoder in formats/.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// LoadSource runs src through a resampler and mono mixer as opts asks and
// drains the result into memory. src is not closed.
//
// The pipeline is built only from what is needed:
//
//	src -> [Resampler] -> [MonoMixer] -> MemoryReader
func LoadSource(ctx context.Context, src audio.Source, opts Options) (*audio.MemoryReader, error) {
	_, span := tracing.StartSpan(ctx, "audsim.LoadSource",
		attribute.Int("source.sample_rate", src.SampleRate()),
		attribute.Int("source.channels", src.Channels()),
		attribute.Int("target_rate", opts.TargetRate),
		attribute.Bool("mono", opts.Mono),
	)
	defer span.End()

	r, err := loadSource(src, opts)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("frames", r.Frames()))

	return r, nil
}

func loadSource(src audio.Source, opts Options) (*audio.MemoryReader, error) {
	switch {
	case src.SampleRate() <= 0:
		return nil, fmt.Errorf("source: %w", audio.ErrInvalidSampleRate)
	case opts.TargetRate < 0:
		return nil, fmt.Errorf("target: %w", audio.ErrInvalidSampleRate)
	case src.Channels() <= 0:
		return nil, audio.ErrInvalidChannels
	}

	pipeline := src
	if opts.TargetRate != 0 && opts.TargetRate != src.SampleRate() {
		pipeline = audio.NewResampler(pipeline, opts.TargetRate)
	}
	if opts.Mono && pipeline.Channels() > 1 {
		pipeline = audio.NewMonoMixer(pipeline)
	}

	return audio.NewMemoryReader(pipeline)
}
