// SPDX-License-Identifier: EPL-2.0

// Command audsim plays or renders a sound file through the hearing
// simulation chain.
//
//	audsim play [flags] <input>
//	audsim render [flags] <input> <output.wav>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audsim"
	"github.com/ik5/audsim/config"
	"github.com/ik5/audsim/hearingaid"
	"github.com/ik5/audsim/internal/tracing"
	"github.com/ik5/audsim/player"
	"github.com/ik5/audsim/player/malgodev"
	"github.com/ik5/audsim/player/otodev"
	"github.com/ik5/audsim/simulation"
)

var errUsage = errors.New("usage: audsim play|render [flags] <input> [output.wav]")

// invocation is a parsed command line.
type invocation struct {
	command string
	cfg     config.Config
	input   string
	output  string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "audsim:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	inv, err := parseArgs(args, os.Stderr)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(inv.cfg.Level())

	shutdown, err := tracing.Init(tracing.Config{
		ServiceName: "audsim",
		Exporter:    inv.cfg.TraceExporter,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("shutting down tracing")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch inv.command {
	case "play":
		return play(ctx, inv, log)
	case "render":
		return render(ctx, inv, log)
	}

	return errUsage
}

// parseArgs reads the subcommand, its flags and positional arguments.
// Flags override the configuration file and environment.
func parseArgs(args []string, output io.Writer) (invocation, error) {
	if len(args) == 0 {
		return invocation{}, errUsage
	}

	inv := invocation{command: args[0]}
	positional := 0
	switch inv.command {
	case "play":
		positional = 1
	case "render":
		positional = 2
	default:
		return invocation{}, fmt.Errorf("unknown command %q: %w", inv.command, errUsage)
	}

	fs := flag.NewFlagSet(inv.command, flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "YAML configuration file")
	mode := fs.String("mode", "", "simulation mode: none, spatialization, hearing-aid or full")
	level := fs.Float64("level", 0, "playback level in dB SPL")
	brir := fs.String("brir", "", "stereo WAV file with the binaural room impulse response")
	left := fs.String("left", "", "left ear prescription JSON")
	right := fs.String("right", "", "right ear prescription JSON")
	backend := fs.String("backend", "", "audio backend: malgo, oto or none")

	if err := fs.Parse(args[1:]); err != nil {
		return invocation{}, err
	}
	if fs.NArg() != positional {
		return invocation{}, errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return invocation{}, err
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			m, err := simulation.ParseMode(*mode)
			if err != nil {
				visitErr = err
				return
			}
			cfg.Mode = m
		case "level":
			cfg.LevelSPL = *level
		case "brir":
			cfg.BRIR = *brir
		case "left":
			cfg.LeftPrescription = *left
		case "right":
			cfg.RightPrescription = *right
		case "backend":
			cfg.Backend = *backend
		}
	})
	if visitErr != nil {
		return invocation{}, visitErr
	}
	if err := cfg.Validate(); err != nil {
		return invocation{}, err
	}

	inv.cfg = cfg
	inv.input = fs.Arg(0)
	if positional > 1 {
		inv.output = fs.Arg(1)
	}

	return inv, nil
}

func format(cfg config.Config) player.Format {
	return player.Format{
		SampleRate:      cfg.SampleRate,
		Channels:        cfg.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}
}

func request(inv invocation) audsim.Request {
	return audsim.Request{
		Source:            inv.input,
		Mode:              inv.cfg.Mode,
		LevelSPL:          inv.cfg.LevelSPL,
		BRIR:              inv.cfg.BRIR,
		LeftPrescription:  inv.cfg.LeftPrescription,
		RightPrescription: inv.cfg.RightPrescription,
	}
}

// newDevice picks the backend named by cfg. The headless device keeps
// real-time pace so "none" behaves like a sound card.
func newDevice(cfg config.Config, log logrus.FieldLogger) player.Device {
	switch cfg.Backend {
	case config.BackendOto:
		return otodev.New(log)
	case config.BackendNone:
		dev := player.NewHeadlessDevice(nil)
		dev.Period = time.Duration(cfg.FramesPerBuffer) * time.Second / time.Duration(cfg.SampleRate)
		return dev
	default:
		return malgodev.New(log)
	}
}

func newSession(cfg config.Config, dev player.Device, log logrus.FieldLogger) (*audsim.Session, error) {
	p, err := player.New(dev, format(cfg), player.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return audsim.NewSession(p,
		audsim.WithLogger(log),
		audsim.WithFullScale(cfg.FullScaleSPL),
		audsim.WithHearingAid(hearingaid.Params{
			AttackMs:   cfg.AttackMs,
			ReleaseMs:  cfg.ReleaseMs,
			ChunkSize:  cfg.ChunkSize,
			WindowSize: cfg.WindowSize,
		}),
	), nil
}

func play(ctx context.Context, inv invocation, log logrus.FieldLogger) error {
	s, err := newSession(inv.cfg, newDevice(inv.cfg, log), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Player().Close(); err != nil {
			log.WithError(err).Warn("closing player")
		}
	}()

	if err := s.Prepare(ctx, request(inv)); err != nil {
		return err
	}
	if err := s.Play(); err != nil {
		return err
	}

	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return s.Stop()
	}
}

func render(ctx context.Context, inv invocation, log logrus.FieldLogger) error {
	// Rendering never opens the device.
	s, err := newSession(inv.cfg, player.NewHeadlessDevice(nil), log)
	if err != nil {
		return err
	}

	n, err := s.Render(ctx, request(inv), inv.output)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"output":  inv.output,
		"frames":  n,
		"seconds": float64(n) / float64(inv.cfg.SampleRate),
	}).Info("wrote output")

	return nil
}
