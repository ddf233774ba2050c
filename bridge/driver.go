package bridge

import (
	"fmt"
	"sync/atomic"

	emucore "github.com/user-none/gbbridge/api"
)

// driver runs the engine on its own goroutine. It is the only reader of the
// button register and the only writer of the frame slot, and it has
// exclusive use of the engine between start and the return of stop.
type driver struct {
	engine  emucore.Engine
	buttons *ButtonRegister
	slot    *FrameSlot

	stopReq atomic.Bool
	steps   atomic.Uint64
	done    chan struct{}
	err     error // set by the goroutine before done is closed
}

func newDriver(engine emucore.Engine, buttons *ButtonRegister, slot *FrameSlot) *driver {
	return &driver{
		engine:  engine,
		buttons: buttons,
		slot:    slot,
		done:    make(chan struct{}),
	}
}

// start spawns the emulation goroutine and returns immediately.
func (d *driver) start() {
	go d.run()
}

// run is the emulation loop. The stop request is only observed between
// steps; an in-flight step always completes.
func (d *driver) run() {
	defer close(d.done)
	defer func() {
		if r := recover(); r != nil {
			d.err = fmt.Errorf("%w: panic: %v", ErrEngineTerminated, r)
		}
	}()

	for !d.stopReq.Load() {
		d.engine.SetButtons(d.buttons.Snapshot())

		frameDone, err := d.engine.Step()
		d.steps.Add(1)
		if err != nil {
			d.err = fmt.Errorf("%w: %w", ErrEngineTerminated, err)
			return
		}

		if frameDone {
			d.slot.Publish(d.engine.Frame())
		}
	}
}

// stop asks the loop to exit and blocks until it has. The returned error
// is non-nil when the engine ended the loop before it was asked to.
func (d *driver) stop() error {
	d.stopReq.Store(true)
	<-d.done
	return d.err
}

// exited is closed once the emulation goroutine has returned.
func (d *driver) exited() <-chan struct{} {
	return d.done
}
