// SPDX-License-Identifier: EPL-2.0

package player

import (
	"sync"
	"time"
)

// HeadlessDevice drives the callback from a goroutine with no sound card.
// With a zero Period it runs as fast as the callback allows. Sink, when
// set, sees every buffer after the callback has filled it.
type HeadlessDevice struct {
	Period time.Duration
	Sink   func(buffers [][]float32)

	mtx     sync.Mutex
	cb      Callback
	buffers [][]float32
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewHeadlessDevice(sink func(buffers [][]float32)) *HeadlessDevice {
	return &HeadlessDevice{Sink: sink}
}

func (d *HeadlessDevice) Open(f Format, cb Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.cb = cb
	d.buffers = make([][]float32, f.Channels)
	for i := range d.buffers {
		d.buffers[i] = make([]float32, f.FramesPerBuffer)
	}

	return nil
}

func (d *HeadlessDevice) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	d.wg.Add(1)
	go d.run(d.stop)

	return nil
}

func (d *HeadlessDevice) run(stop <-chan struct{}) {
	defer d.wg.Done()

	var tick <-chan time.Time
	if d.Period > 0 {
		t := time.NewTicker(d.Period)
		defer t.Stop()
		tick = t.C
	}

	for {
		if tick != nil {
			select {
			case <-stop:
				return
			case <-tick:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}

		res := d.cb(d.buffers)
		if d.Sink != nil {
			d.Sink(d.buffers)
		}

		if res == Complete {
			<-stop
			return
		}
	}
}

func (d *HeadlessDevice) Stop() error {
	d.mtx.Lock()
	stop := d.stop
	d.stop = nil
	d.mtx.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	d.wg.Wait()

	return nil
}

func (d *HeadlessDevice) Close() error {
	return d.Stop()
}
