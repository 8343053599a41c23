// SPDX-License-Identifier: EPL-2.0

// Package otodev plays a player.Callback through
// github.com/ebitengine/oto/v3. oto pulls audio through io.Reader; the
// reader returns io.EOF once the callback reports completion, which ends
// the oto player.
package otodev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audsim/player"
	"github.com/sirupsen/logrus"
)

const (
	bytesPerSample = 4
	drainPoll      = 10 * time.Millisecond
	maxDrain       = 2 * time.Second
)

var ErrNotOpen = errors.New("oto: device is not open")

// otoPlayer is the part of *oto.Player the device drives.
type otoPlayer interface {
	Play()
	IsPlaying() bool
	Close() error
}

type Device struct {
	log logrus.FieldLogger

	mtx    sync.Mutex
	ctx    *oto.Context
	player otoPlayer

	// Used from oto's reader goroutine only.
	channels int
	frames   int
	cb       player.Callback
	scratch  [][]float32
	views    [][]float32
	finished atomic.Bool
}

func New(log logrus.FieldLogger) *Device {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Device{log: log}
}

// Open creates the oto context. oto allows one context per process, so a
// Device should be opened once and reused.
func (d *Device) Open(f player.Format, cb player.Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.ctx != nil {
		return nil
	}

	bufferTime := time.Duration(f.FramesPerBuffer) * time.Second / time.Duration(f.SampleRate)
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferTime,
	})
	if err != nil {
		return fmt.Errorf("oto: creating context: %w", err)
	}
	<-ready

	d.setup(f, cb)
	d.ctx = ctx
	d.log.WithField("buffer", bufferTime).Debug("oto context ready")

	return nil
}

func (d *Device) setup(f player.Format, cb player.Callback) {
	d.channels = f.Channels
	d.frames = f.FramesPerBuffer
	d.cb = cb
	d.scratch = make([][]float32, f.Channels)
	d.views = make([][]float32, f.Channels)
	for i := range d.scratch {
		d.scratch[i] = make([]float32, f.FramesPerBuffer)
	}
}

// Start creates a fresh oto player; a player that reached io.EOF cannot
// be restarted.
func (d *Device) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.ctx == nil {
		return ErrNotOpen
	}
	if d.player != nil {
		return nil
	}

	d.finished.Store(false)
	d.player = d.ctx.NewPlayer(d)
	d.player.Play()

	return nil
}

func (d *Device) Stop() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player == nil {
		return nil
	}

	err := d.player.Close()
	d.player = nil
	if err != nil {
		return fmt.Errorf("oto: closing player: %w", err)
	}

	return nil
}

// Drain waits until oto has played out what Read handed over before
// io.EOF. oto marks the player as no longer playing once its queue is
// empty.
func (d *Device) Drain(stop <-chan struct{}) error {
	t := time.NewTicker(drainPoll)
	defer t.Stop()

	deadline := time.Now().Add(maxDrain)
	for {
		d.mtx.Lock()
		playing := d.player != nil && d.player.IsPlaying()
		d.mtx.Unlock()

		if !playing {
			return nil
		}
		if time.Now().After(deadline) {
			d.log.WithField("timeout", maxDrain).Warn("oto: player did not drain")
			return nil
		}

		select {
		case <-stop:
			return nil
		case <-t.C:
		}
	}
}

// Close stops playback. The oto context itself lives until the process
// exits.
func (d *Device) Close() error {
	return d.Stop()
}

// Read fills p with whole interleaved frames, running the callback in
// cycles of at most FramesPerBuffer frames.
func (d *Device) Read(p []byte) (int, error) {
	if d.finished.Load() {
		return 0, io.EOF
	}

	stride := d.channels * bytesPerSample
	total := len(p) / stride

	off := 0
	for off < total {
		n := min(d.frames, total-off)
		for c := range d.views {
			d.views[c] = d.scratch[c][:n]
		}

		res := d.cb(d.views)
		for c, samples := range d.views {
			for i, v := range samples {
				pos := (off+i)*stride + c*bytesPerSample
				binary.LittleEndian.PutUint32(p[pos:], math.Float32bits(v))
			}
		}
		off += n

		if res == player.Complete {
			d.finished.Store(true)
			break
		}
	}

	return off * stride, nil
}
