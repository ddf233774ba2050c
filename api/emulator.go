package emucore

// Engine is the boundary between the bridge and an emulator core. The bridge
// owns an Engine exclusively: after it is handed to a session it is only ever
// called from one goroutine at a time, and Close is called exactly once.
type Engine interface {
	// Load installs cartridge ROM data. It is called before stepping starts
	// and may be called again after a failed attempt.
	Load(rom []byte) error

	// SetButtons provides the input state to use for the next step.
	SetButtons(mask ButtonMask)

	// Step executes one unit of emulation. frameDone is true when the step
	// completed a video frame, which is then available from Frame. A non-nil
	// error means the engine cannot continue.
	Step() (frameDone bool, err error)

	// Frame returns the most recently completed frame. The slice is owned by
	// the engine and is only valid until the next Step.
	Frame() []byte

	// Close releases any resources held by the engine.
	Close()
}

// Resetter is implemented by engines that can return to power-on state
// without reloading the cartridge.
type Resetter interface {
	Reset()
}
