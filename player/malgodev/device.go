// SPDX-License-Identifier: EPL-2.0

// Package malgodev plays a player.Callback through miniaudio via
// github.com/gen2brain/malgo.
package malgodev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/ik5/audsim/player"
	"github.com/sirupsen/logrus"
)

const (
	bytesPerSample = 4
	// maxDrain bounds the wait for the device to ask for the period after
	// the last one.
	maxDrain = 2 * time.Second
)

var ErrNotOpen = errors.New("malgo: device is not open")

// Device is a float32 playback device. miniaudio hands the data callback
// one interleaved period; it is split into cycles of at most
// FramesPerBuffer frames, each run through the player callback on
// pre-sized per-channel scratch buffers.
type Device struct {
	log logrus.FieldLogger

	mtx sync.Mutex
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	// Closed by the data callback when it is asked for the period after
	// the completing one.
	drained   chan struct{}
	signalled atomic.Bool

	// Used by the data callback only.
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

func (d *Device) Open(f player.Format, cb player.Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.dev != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		d.log.WithField("backend", "malgo").Debug(msg)
	})
	if err != nil {
		return fmt.Errorf("malgo: initialising context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(f.Channels)
	cfg.SampleRate = uint32(f.SampleRate)
	cfg.PeriodSizeInFrames = uint32(f.FramesPerBuffer)
	cfg.Alsa.NoMMap = 1

	d.setup(f, cb)

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.data,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("malgo: initialising playback device: %w", err)
	}

	d.ctx = ctx
	d.dev = dev

	return nil
}

// setup sizes everything the data callback touches.
func (d *Device) setup(f player.Format, cb player.Callback) {
	d.channels = f.Channels
	d.frames = f.FramesPerBuffer
	d.cb = cb
	d.drained = make(chan struct{})
	d.scratch = make([][]float32, f.Channels)
	d.views = make([][]float32, f.Channels)
	for i := range d.scratch {
		d.scratch[i] = make([]float32, f.FramesPerBuffer)
	}
}

func (d *Device) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.dev == nil {
		return ErrNotOpen
	}

	d.finished.Store(false)
	d.signalled.Store(false)
	d.drained = make(chan struct{})
	if err := d.dev.Start(); err != nil {
		return fmt.Errorf("malgo: starting device: %w", err)
	}

	return nil
}

func (d *Device) Stop() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.dev == nil || !d.dev.IsStarted() {
		return nil
	}
	if err := d.dev.Stop(); err != nil {
		return fmt.Errorf("malgo: stopping device: %w", err)
	}

	return nil
}

// Drain waits for the data callback that follows the completing period.
// By then miniaudio has taken the last period for playback.
func (d *Device) Drain(stop <-chan struct{}) error {
	d.mtx.Lock()
	drained := d.drained
	d.mtx.Unlock()

	if drained == nil {
		return nil
	}

	t := time.NewTimer(maxDrain)
	defer t.Stop()

	select {
	case <-drained:
	case <-stop:
	case <-t.C:
		d.log.WithField("timeout", maxDrain).Warn("malgo: device did not drain")
	}

	return nil
}

func (d *Device) Close() error {
	if err := d.Stop(); err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.dev != nil {
		d.dev.Uninit()
		d.dev = nil
	}
	if d.ctx != nil {
		err := d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
		if err != nil {
			return fmt.Errorf("malgo: releasing context: %w", err)
		}
	}

	return nil
}

// data is the miniaudio callback. Once the player reports Complete the
// rest of the period, and every later period, is silence.
func (d *Device) data(out, _ []byte, frameCount uint32) {
	if d.finished.Load() {
		clear(out)
		if d.signalled.CompareAndSwap(false, true) {
			close(d.drained)
		}
		return
	}

	stride := d.channels * bytesPerSample
	total := min(int(frameCount), len(out)/stride)

	for off := 0; off < total; {
		n := min(d.frames, total-off)
		for c := range d.views {
			d.views[c] = d.scratch[c][:n]
		}

		res := d.cb(d.views)
		interleave(out[off*stride:], d.views)
		off += n

		if res == player.Complete {
			d.finished.Store(true)
			clear(out[off*stride:])
			return
		}
	}
}

// interleave writes deinterleaved float32 channels as little-endian frames.
func interleave(out []byte, channels [][]float32) {
	stride := len(channels) * bytesPerSample
	for c, samples := range channels {
		for i, v := range samples {
			pos := i*stride + c*bytesPerSample
			binary.LittleEndian.PutUint32(out[pos:], math.Float32bits(v))
		}
	}
}
