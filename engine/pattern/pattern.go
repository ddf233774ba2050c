// Package pattern is a deterministic stand-in for a Game Boy core. It
// renders a scrolling four-shade test pattern seeded from the cartridge
// header and a cursor steered by the d-pad. Output depends only on the
// cartridge, the number of steps and the button masks supplied, which makes
// it suitable for tests and for exercising frontends without a real core.
package pattern

import (
	"errors"

	emucore "github.com/user-none/gbbridge/api"
	"github.com/user-none/gbbridge/cartridge"
)

// DefaultStepsPerFrame is the number of steps per completed frame.
const DefaultStepsPerFrame = 64

const cursorSize = 8

// ErrNotLoaded is returned by Step when no cartridge has been loaded.
var ErrNotLoaded = errors.New("pattern: no cartridge loaded")

// DMG shades, lightest first
var palette = [4][4]byte{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xC0, 0xC0, 0xC0, 0xFF},
	{0x60, 0x60, 0x60, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

// Engine implements emucore.Engine.
type Engine struct {
	stepsPerFrame int

	seed    uint8
	loaded  bool
	closed  bool
	buttons emucore.ButtonMask

	steps   uint64
	frames  uint64
	cursorX int
	cursorY int

	frame []byte
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepsPerFrame sets how many steps complete one frame. Values below
// one are treated as one.
func WithStepsPerFrame(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.stepsPerFrame = n
	}
}

// New creates an engine with no cartridge loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		stepsPerFrame: DefaultStepsPerFrame,
		frame:         emucore.NewFrame(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Load seeds the pattern from the cartridge header checksum.
func (e *Engine) Load(rom []byte) error {
	if len(rom) < cartridge.HeaderEnd {
		return cartridge.ErrTooSmall
	}
	e.seed = cartridge.HeaderChecksum(rom)
	e.loaded = true
	e.Reset()
	return nil
}

// Reset returns the cursor and counters to power-on state.
func (e *Engine) Reset() {
	e.steps = 0
	e.frames = 0
	e.cursorX = (emucore.FrameWidth - cursorSize) / 2
	e.cursorY = (emucore.FrameHeight - cursorSize) / 2
	e.buttons = 0
}

// SetButtons stores the mask used by the next step.
func (e *Engine) SetButtons(mask emucore.ButtonMask) {
	e.buttons = mask
}

// Step advances one step. Every stepsPerFrame steps the cursor moves
// according to the d-pad and a frame is rendered.
func (e *Engine) Step() (bool, error) {
	if !e.loaded || e.closed {
		return false, ErrNotLoaded
	}

	e.steps++
	if e.steps%uint64(e.stepsPerFrame) != 0 {
		return false, nil
	}

	e.moveCursor()
	e.render()
	e.frames++
	return true, nil
}

// Frame returns the last rendered frame.
func (e *Engine) Frame() []byte {
	return e.frame
}

// Close marks the engine unusable.
func (e *Engine) Close() {
	e.closed = true
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	return e.closed
}

// Steps returns the number of steps executed since the last reset.
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Frames returns the number of frames rendered since the last reset.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Cursor returns the top-left corner of the cursor.
func (e *Engine) Cursor() (x, y int) {
	return e.cursorX, e.cursorY
}

func (e *Engine) moveCursor() {
	b := e.buttons
	if b.Pressed(emucore.ButtonStart) {
		e.cursorX = (emucore.FrameWidth - cursorSize) / 2
		e.cursorY = (emucore.FrameHeight - cursorSize) / 2
		return
	}
	if b.Pressed(emucore.ButtonRight) && e.cursorX < emucore.FrameWidth-cursorSize {
		e.cursorX++
	}
	if b.Pressed(emucore.ButtonLeft) && e.cursorX > 0 {
		e.cursorX--
	}
	if b.Pressed(emucore.ButtonDown) && e.cursorY < emucore.FrameHeight-cursorSize {
		e.cursorY++
	}
	if b.Pressed(emucore.ButtonUp) && e.cursorY > 0 {
		e.cursorY--
	}
}

// ShadeAt returns the palette index drawn at (x, y) for the given frame
// number, ignoring the cursor and inversion.
func ShadeAt(seed uint8, frame uint64, x, y int) int {
	return int((uint64(x+y)+frame)/8+uint64(seed)) & 3
}

func (e *Engine) render() {
	invert := e.buttons.Pressed(emucore.ButtonA)
	for y := 0; y < emucore.FrameHeight; y++ {
		for x := 0; x < emucore.FrameWidth; x++ {
			shade := ShadeAt(e.seed, e.frames, x, y)
			if x >= e.cursorX && x < e.cursorX+cursorSize && y >= e.cursorY && y < e.cursorY+cursorSize {
				shade = 3
			}
			if invert {
				shade = 3 - shade
			}
			copy(e.frame[emucore.PixelOffset(x, y):], palette[shade][:])
		}
	}
}
