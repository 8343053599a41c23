// SPDX-License-Identifier: EPL-2.0

package audsim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/calibration"
	"github.com/ik5/audsim/dsp"
	"github.com/ik5/audsim/formats/wav"
	"github.com/ik5/audsim/hearingaid"
	"github.com/ik5/audsim/internal/tracing"
	"github.com/ik5/audsim/player"
	"github.com/ik5/audsim/simulation"
	"github.com/ik5/audsim/stream"
)

const DefaultFullScaleSPL = 119.0

// Request names the files and settings of one simulation run.
//
// LevelSPL is the playback level in dB SPL. BRIR is required by the
// spatialized modes and the prescriptions by the aided modes; Left is used
// for channel 0 and Right for channel 1.
type Request struct {
	Source            string
	Mode              simulation.Mode
	LevelSPL          float64
	BRIR              string
	LeftPrescription  string
	RightPrescription string
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRegistry sets the decoders used to open source files.
func WithRegistry(reg *audio.Registry) Option {
	return func(s *Session) { s.readers = audio.ReaderFactory{Registry: reg} }
}

// WithWriterFactory sets how Render creates its output file.
func WithWriterFactory(f audio.WriterFactory) Option {
	return func(s *Session) { s.writers = f }
}

// WithHearingAid sets the compressor timing and block sizes. The
// prescription and sample rate fields are filled in per request.
func WithHearingAid(p hearingaid.Params) Option {
	return func(s *Session) { s.aid = p }
}

// WithFactory replaces the hearing-aid processor factory.
func WithFactory(f hearingaid.Factory) Option {
	return func(s *Session) { s.factory = f }
}

// WithFullScale sets the dB SPL produced by a full scale digital sine.
func WithFullScale(spl float64) Option {
	return func(s *Session) { s.fullScale = spl }
}

// Session turns requests into processing chains and plays or renders them.
// Preparing and starting a session happens on the caller's goroutine; the
// device callback only ever sees the prepared loader.
type Session struct {
	player    *player.Player
	readers   audio.ReaderFactory
	writers   audio.WriterFactory
	factory   hearingaid.Factory
	aid       hearingaid.Params
	fullScale float64
	log       logrus.FieldLogger

	mtx    sync.Mutex
	id     uuid.UUID
	loader *stream.Loader
}

// NewSession plays through p. Render only uses p's format.
func NewSession(p *player.Player, opts ...Option) *Session {
	s := &Session{
		player:  p,
		readers: audio.ReaderFactory{Registry: DefaultRegistry()},
		writers: wav.NewFileWriter,
		factory: hearingaid.DefaultFactory{},
		aid: hearingaid.Params{
			AttackMs:   5,
			ReleaseMs:  50,
			ChunkSize:  1024,
			WindowSize: 256,
		},
		fullScale: DefaultFullScaleSPL,
		log:       logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// ID identifies the currently prepared request. It is uuid.Nil until the
// first successful Prepare.
func (s *Session) ID() uuid.UUID {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.id
}

// Loader returns the prepared loader, or nil.
func (s *Session) Loader() *stream.Loader {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.loader
}

func (s *Session) Player() *player.Player { return s.player }

// Prepare loads everything req names, builds the processing chain and
// hands it to the player. Any failure is returned as a *RequestError and
// leaves both the session and the player as they were.
func (s *Session) Prepare(ctx context.Context, req Request) error {
	ctx, span := tracing.StartSpan(ctx, "audsim.Session.Prepare",
		attribute.String("mode", req.Mode.String()),
		attribute.String("source", req.Source),
	)
	defer span.End()

	err := s.prepare(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		return &RequestError{Op: "prepare", Err: err}
	}

	return nil
}

func (s *Session) prepare(ctx context.Context, req Request) error {
	if s.player.Streaming() {
		return player.ErrAlreadyStreaming
	}

	l, err := s.build(ctx, req, s.player.Format())
	if err != nil {
		return err
	}

	if err := s.player.Prepare(l); err != nil {
		return err
	}

	id := uuid.New()

	s.mtx.Lock()
	s.id = id
	s.loader = l
	s.mtx.Unlock()

	s.log.WithFields(logrus.Fields{
		"session":     id,
		"mode":        req.Mode,
		"source":      req.Source,
		"level_spl":   req.LevelSPL,
		"frames":      l.Reader().Frames(),
		"group_delay": l.Processor().GroupDelay(),
	}).Info("session prepared")

	return nil
}

// Play starts the prepared request.
func (s *Session) Play() error {
	if err := s.player.Play(); err != nil {
		return err
	}

	s.log.WithField("session", s.ID()).Info("playback started")

	return nil
}

// Replay plays the last prepared request again from its first frame.
func (s *Session) Replay() error {
	l := s.Loader()
	if l == nil {
		return player.ErrNotPrepared
	}
	if s.player.Streaming() {
		return player.ErrAlreadyStreaming
	}

	l.Rewind()
	if err := s.player.Prepare(l); err != nil {
		return err
	}

	return s.Play()
}

// Stop ends playback early. Stopping an idle session does nothing.
func (s *Session) Stop() error {
	if err := s.player.Stop(); err != nil {
		return err
	}

	s.log.WithField("session", s.ID()).Info("playback stopped")

	return nil
}

// Done is closed when the current playback ends.
func (s *Session) Done() <-chan struct{} { return s.player.Done() }

// Render processes req exactly as for playback and writes the result,
// including the flushed tail, to outPath. It returns the number of frames
// written. The player is not touched.
func (s *Session) Render(ctx context.Context, req Request, outPath string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "audsim.Session.Render",
		attribute.String("mode", req.Mode.String()),
		attribute.String("source", req.Source),
		attribute.String("output", outPath),
	)
	defer span.End()

	n, err := s.render(ctx, req, outPath)
	if err != nil {
		tracing.RecordError(span, err)
		return n, &RequestError{Op: "render", Err: err}
	}

	span.SetAttributes(attribute.Int("frames", n))

	return n, nil
}

func (s *Session) render(ctx context.Context, req Request, outPath string) (int, error) {
	format := s.player.Format()

	l, err := s.build(ctx, req, format)
	if err != nil {
		return 0, err
	}

	w, err := s.writers(outPath, format.Channels, format.SampleRate)
	if err != nil {
		return 0, err
	}

	n, err := stream.Render(ctx, l, w, format.Channels, format.FramesPerBuffer)
	if cerr := w.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing %s: %w", outPath, cerr))
	}
	if err != nil {
		return n, err
	}

	s.log.WithFields(logrus.Fields{
		"mode":        req.Mode,
		"source":      req.Source,
		"output":      outPath,
		"frames":      n,
		"group_delay": l.Processor().GroupDelay(),
	}).Info("render finished")

	return n, nil
}

// inputs is everything build reads from disk.
type inputs struct {
	reader        *audio.MemoryReader
	brir          simulation.BRIR
	prescriptions []hearingaid.Prescription
}

// build reads the files of req concurrently, calibrates the source and
// assembles the loader for format.
func (s *Session) build(ctx context.Context, req Request, format player.Format) (*stream.Loader, error) {
	if req.Source == "" {
		return nil, ErrMissingSource
	}

	in, err := s.load(ctx, req, format)
	if err != nil {
		return nil, err
	}

	// A mono reader feeds every output channel; otherwise the reader
	// already matches the device layout.
	computer := calibration.NewComputer(in.reader)
	sourceScales := computer.Scales(calibration.DigitalLevel(req.LevelSPL, s.fullScale))

	scales := make([]float64, format.Channels)
	for ch := range scales {
		scales[ch] = sourceScales[min(ch, len(sourceScales)-1)]
	}

	aid := s.aid
	aid.SampleRate = format.SampleRate
	aid.FullScaleSPL = s.fullScale

	proc, err := simulation.Build(simulation.Request{
		Mode:          req.Mode,
		Channels:      format.Channels,
		Scales:        scales,
		BRIR:          in.brir,
		Prescriptions: in.prescriptions,
		HearingAid:    aid,
		Factory:       s.factory,
	})
	if err != nil {
		return nil, err
	}

	if !req.Mode.Spatialized() && in.reader.Channels() == 1 && format.Channels > 1 {
		proc = dsp.NewPipeline(dsp.ChannelCopier{}, proc)
	}

	return stream.NewLoader(in.reader, proc), nil
}

func (s *Session) load(ctx context.Context, req Request, format player.Format) (inputs, error) {
	var in inputs

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.loadSource(ctx, req, format)
		if err != nil {
			return err
		}
		in.reader = r
		return nil
	})

	if req.Mode.Spatialized() {
		g.Go(func() error {
			if req.BRIR == "" {
				return ErrMissingBRIR
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			b, err := simulation.LoadBRIR(req.BRIR)
			if err != nil {
				return err
			}
			if b.SampleRate != format.SampleRate {
				return fmt.Errorf("%w: %d Hz, device %d Hz",
					ErrSampleRateMismatch, b.SampleRate, format.SampleRate)
			}
			in.brir = b
			return nil
		})
	}

	if req.Mode.Aided() {
		paths := []string{req.LeftPrescription, req.RightPrescription}
		in.prescriptions = make([]hearingaid.Prescription, min(len(paths), format.Channels))

		for ch := range in.prescriptions {
			g.Go(func() error {
				if paths[ch] == "" {
					return fmt.Errorf("%w %d", simulation.ErrMissingPrescription, ch)
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				p, err := hearingaid.LoadPrescription(paths[ch])
				if err != nil {
					return err
				}
				in.prescriptions[ch] = p
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}

	return in, nil
}

// loadSource decodes req.Source at the device rate. It is down-mixed to
// mono for spatialization and whenever its layout differs from the
// device's.
func (s *Session) loadSource(ctx context.Context, req Request, format player.Format) (*audio.MemoryReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := s.readers.OpenSource(req.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	opts := Options{
		TargetRate: format.SampleRate,
		Mono:       req.Mode.Spatialized() || src.Channels() != format.Channels,
	}

	r, err := LoadSource(ctx, src, opts)
	if err != nil {
		return nil, &audio.CreateError{Path: req.Source, Err: err}
	}

	return r, nil
}
