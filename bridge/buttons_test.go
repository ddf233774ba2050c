package bridge

import (
	"sync"
	"testing"

	emucore "github.com/user-none/gbbridge/api"
)

func TestButtonRegister_SetAndSnapshot(t *testing.T) {
	var r ButtonRegister

	if r.Snapshot() != 0 {
		t.Fatalf("new register should be empty, got %08b", r.Snapshot())
	}

	r.Set(emucore.ButtonRight, true)
	r.Set(emucore.ButtonStart, true)
	if got := r.Snapshot(); got != 0b1000_0001 {
		t.Fatalf("mask = %08b, want 10000001", got)
	}

	r.Set(emucore.ButtonRight, false)
	if got := r.Snapshot(); got != 0b1000_0000 {
		t.Fatalf("mask = %08b, want 10000000", got)
	}

	// Releasing an unpressed button is a no-op
	r.Set(emucore.ButtonB, false)
	if got := r.Snapshot(); got != 0b1000_0000 {
		t.Fatalf("mask = %08b, want 10000000", got)
	}

	// Invalid buttons are ignored
	r.Set(emucore.Button(12), true)
	r.Set(emucore.Button(-1), true)
	if got := r.Snapshot(); got != 0b1000_0000 {
		t.Fatalf("invalid Set changed mask to %08b", got)
	}

	r.Replace(0b0101_0101)
	if got := r.Snapshot(); got != 0b0101_0101 {
		t.Fatalf("Replace: mask = %08b", got)
	}
}

// TestButtonRegister_ConcurrentWriters toggles four buttons from four
// goroutines while the other four stay held. Every snapshot must still
// contain the held buttons, which a bit-by-bit read-modify-write would lose.
func TestButtonRegister_ConcurrentWriters(t *testing.T) {
	var r ButtonRegister

	held := []emucore.Button{emucore.ButtonA, emucore.ButtonB, emucore.ButtonSelect, emucore.ButtonStart}
	toggled := []emucore.Button{emucore.ButtonRight, emucore.ButtonLeft, emucore.ButtonUp, emucore.ButtonDown}

	var heldMask emucore.ButtonMask
	for _, b := range held {
		r.Set(b, true)
		heldMask |= b.Mask()
	}

	const iterations = 20000
	var wg sync.WaitGroup
	for _, b := range toggled {
		wg.Add(1)
		go func(b emucore.Button) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				r.Set(b, i%2 == 0)
			}
			// Finish pressed so the final state is known
			r.Set(b, true)
		}(b)
	}

	stop := make(chan struct{})
	readerDone := make(chan int)
	go func() {
		bad := 0
		for {
			select {
			case <-stop:
				readerDone <- bad
				return
			default:
			}
			if r.Snapshot()&heldMask != heldMask {
				bad++
			}
		}
	}()

	wg.Wait()
	close(stop)
	if bad := <-readerDone; bad != 0 {
		t.Fatalf("%d snapshots lost held buttons", bad)
	}

	if got := r.Snapshot(); got != 0xFF {
		t.Fatalf("final mask = %08b, want 11111111", got)
	}
}
