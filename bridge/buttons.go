package bridge

import (
	"sync/atomic"

	emucore "github.com/user-none/gbbridge/api"
)

// ButtonRegister holds the current button mask. It is written by the
// frontend goroutine and read by the emulation goroutine once per step.
// Every operation is a single atomic access to the whole mask.
type ButtonRegister struct {
	mask atomic.Uint32
}

// Set presses or releases one button without disturbing the others.
// Invalid buttons are ignored.
func (r *ButtonRegister) Set(b emucore.Button, pressed bool) {
	bit := uint32(b.Mask())
	if bit == 0 {
		return
	}
	if pressed {
		r.mask.Or(bit)
	} else {
		r.mask.And(^bit)
	}
}

// Replace overwrites the whole mask in one store.
func (r *ButtonRegister) Replace(mask emucore.ButtonMask) {
	r.mask.Store(uint32(mask))
}

// Snapshot returns the full mask as of a single instant.
func (r *ButtonRegister) Snapshot() emucore.ButtonMask {
	return emucore.ButtonMask(r.mask.Load())
}
