package bridge

import (
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"

	emucore "github.com/user-none/gbbridge/api"
)

var errFakeFault = errors.New("unsupported instruction")

// fakeEngine is a scriptable emucore.Engine. Fields are configured before
// the session starts; counters are atomic so tests may read them while the
// emulation goroutine runs.
type fakeEngine struct {
	frameEvery uint64 // complete a frame every n steps (0 = never)
	panicAt    uint64 // panic on this step (0 = never)
	failAt     uint64 // return errFakeFault on this step (0 = never)
	loadErr    error

	// When set, each step signals entered and waits on release.
	entered chan struct{}
	release chan struct{}

	steps    atomic.Uint64
	lastMask atomic.Uint32
	closes   atomic.Int32
	inStep   atomic.Bool

	frame []byte
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		frameEvery: 1,
		frame:      emucore.NewFrame(),
	}
}

func (f *fakeEngine) Load(rom []byte) error {
	return f.loadErr
}

func (f *fakeEngine) SetButtons(mask emucore.ButtonMask) {
	f.lastMask.Store(uint32(mask))
}

func (f *fakeEngine) Step() (bool, error) {
	f.inStep.Store(true)
	defer f.inStep.Store(false)

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	n := f.steps.Add(1)
	if n == f.panicAt {
		panic("fake engine fault")
	}
	if n == f.failAt {
		return false, errFakeFault
	}
	if f.frameEvery == 0 || n%f.frameEvery != 0 {
		return false, nil
	}
	for i := range f.frame {
		f.frame[i] = byte(n)
	}
	return true, nil
}

func (f *fakeEngine) Frame() []byte {
	return f.frame
}

func (f *fakeEngine) Close() {
	f.closes.Add(1)
}

// quietLogger discards session log output.
func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// expectMisuse runs fn and fails the test unless it panics with a *MisuseError.
func expectMisuse(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected misuse panic", name)
		}
		if _, ok := r.(*MisuseError); !ok {
			t.Fatalf("%s: panic value %T (%v), want *MisuseError", name, r, r)
		}
	}()
	fn()
}
