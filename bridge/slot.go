package bridge

import (
	"sync"

	emucore "github.com/user-none/gbbridge/api"
)

// FrameSlot is a single-frame mailbox between the emulation goroutine
// (producer) and the frontend (consumer). A newer frame replaces an unread
// one; nothing is queued and neither side ever waits for the other. The
// lock is held only across the fixed-size copy.
type FrameSlot struct {
	mu        sync.Mutex
	pixels    []byte
	dirty     bool
	published uint64
	dropped   uint64
}

// NewFrameSlot creates a slot holding one zeroed frame.
func NewFrameSlot() *FrameSlot {
	return &FrameSlot{
		pixels: emucore.NewFrame(),
	}
}

// Publish copies frame into the slot and marks it unread. Input shorter
// than a frame leaves the remainder black; longer input is truncated.
func (s *FrameSlot) Publish(frame []byte) {
	s.mu.Lock()
	n := copy(s.pixels, frame)
	if n < len(s.pixels) {
		clear(s.pixels[n:])
	}
	if s.dirty {
		s.dropped++
	}
	s.dirty = true
	s.published++
	s.mu.Unlock()
}

// TryTake copies the unread frame into dst and marks it read. It returns
// false, without copying, when no frame has been published since the last
// take. dst should be emucore.FrameSize bytes.
func (s *FrameSlot) TryTake(dst []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return false
	}
	copy(dst, s.pixels)
	s.dirty = false
	return true
}

// Take is TryTake into a newly allocated frame.
func (s *FrameSlot) Take() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil, false
	}
	frame := make([]byte, len(s.pixels))
	copy(frame, s.pixels)
	s.dirty = false
	return frame, true
}

// Pending reports whether an unread frame is waiting.
func (s *FrameSlot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Stats returns the number of frames published and the number replaced
// before the consumer read them.
func (s *FrameSlot) Stats() (published, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published, s.dropped
}
