// SPDX-License-Identifier: EPL-2.0

// Package player connects a stream.Loader to an output Device.
//
// The control side (Prepare, Play, Stop, Close) takes a mutex and may
// allocate and log. The callback side only reads an atomic pointer and
// runs the loader, so it never blocks.
package player

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ik5/audsim/stream"
	"github.com/sirupsen/logrus"
)

// State of the player.
type State int

const (
	Idle State = iota
	Prepared
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prepared:
		return "prepared"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger for control side events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// WithOnComplete registers fn to run, on a control goroutine, each time a
// stream finishes on its own. It is not called after Stop.
func WithOnComplete(fn func()) Option {
	return func(p *Player) { p.onComplete = fn }
}

type Player struct {
	device     Device
	format     Format
	log        logrus.FieldLogger
	onComplete func()

	// Read by the callback.
	loader   atomic.Pointer[stream.Loader]
	complete chan struct{}

	mtx    sync.Mutex
	state  State
	opened bool
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

func New(device Device, format Format, opts ...Option) (*Player, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	p := &Player{
		device:   device,
		format:   format,
		log:      logrus.StandardLogger(),
		complete: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	close(p.done)

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p, nil
}

func (p *Player) Format() Format { return p.format }

func (p *Player) State() State {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.state
}

func (p *Player) Streaming() bool { return p.State() == Streaming }

// Done is closed when the current stream ends, by completion or Stop. It
// is already closed while nothing is streaming.
func (p *Player) Done() <-chan struct{} {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.done
}

// Prepare binds l for the next Play. The device is opened on first use. It
// fails with ErrAlreadyStreaming while a stream is live, and leaves the
// player unchanged on any error.
func (p *Player) Prepare(l *stream.Loader) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case p.state == Streaming:
		return ErrAlreadyStreaming
	}

	if !p.opened {
		if err := p.device.Open(p.format, p.callback); err != nil {
			return fmt.Errorf("opening device: %w", err)
		}
		p.opened = true
		p.log.WithFields(logrus.Fields{
			"sample_rate": p.format.SampleRate,
			"channels":    p.format.Channels,
			"frames":      p.format.FramesPerBuffer,
		}).Debug("device opened")
	}

	l.Reset()
	p.loader.Store(l)
	p.state = Prepared

	return nil
}

// Play starts streaming the prepared loader.
func (p *Player) Play() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case p.state == Streaming:
		return ErrAlreadyStreaming
	case p.state != Prepared:
		return ErrNotPrepared
	}

	// Drop a completion left over from a stream that was stopped late.
	select {
	case <-p.complete:
	default:
	}

	if err := p.device.Start(); err != nil {
		return fmt.Errorf("starting device: %w", err)
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.state = Streaming
	go p.watch(p.stop, p.done)

	p.log.Debug("stream started")

	return nil
}

// Stop ends a live stream. It is a no-op when nothing is streaming.
func (p *Player) Stop() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.state != Streaming {
		return nil
	}

	close(p.stop)
	err := p.device.Stop()
	p.finish()
	p.log.Debug("stream stopped")

	if err != nil {
		return fmt.Errorf("stopping device: %w", err)
	}

	return nil
}

// Close stops any stream and releases the device.
func (p *Player) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.state = Idle
	p.loader.Store(nil)

	if !p.opened {
		return nil
	}
	if err := p.device.Close(); err != nil {
		return fmt.Errorf("closing device: %w", err)
	}
	p.log.Debug("device closed")

	return nil
}

// callback runs on the device thread.
func (p *Player) callback(buffers [][]float32) Result {
	l := p.loader.Load()
	if l == nil {
		for _, b := range buffers {
			clear(b)
		}
		return Complete
	}

	l.Load(buffers)
	if !l.Complete() {
		return Continue
	}

	select {
	case p.complete <- struct{}{}:
	default:
	}

	return Complete
}

// watch waits for the callback to report completion and then stops the
// device from the control side.
func (p *Player) watch(stop, done chan struct{}) {
	select {
	case <-p.complete:
	case <-stop:
		return
	}

	// The final buffer may still be queued in the device.
	if d, ok := p.device.(Drainer); ok {
		if err := d.Drain(stop); err != nil {
			p.log.WithError(err).Warn("draining device after completion")
		}
	}

	p.mtx.Lock()
	if p.state != Streaming || p.done != done {
		p.mtx.Unlock()
		return
	}

	if err := p.device.Stop(); err != nil {
		p.log.WithError(err).Warn("stopping device after completion")
	}
	p.finish()
	onComplete := p.onComplete
	p.mtx.Unlock()

	p.log.Debug("stream complete")
	if onComplete != nil {
		onComplete()
	}
}

// finish moves to Idle. Callers hold mtx.
func (p *Player) finish() {
	p.state = Idle
	p.loader.Store(nil)
	close(p.done)
}
