// Package bridge connects an emulator engine running on its own goroutine
// with a frontend that polls for frames and reports input on its own
// schedule.
//
// A Session owns the engine. The only state shared between the two sides is
// a ButtonRegister (frontend to engine) and a FrameSlot (engine to
// frontend); neither ever blocks its caller.
package bridge

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	emucore "github.com/user-none/gbbridge/api"
	"github.com/user-none/gbbridge/cartridge"
	"github.com/user-none/gbbridge/romloader"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateCreated State = iota
	StateLoaded
	StateRunning
	StateStopped
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoaded:
		return "loaded"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithExtensions sets the cartridge file extensions accepted by
// LoadCartridge, including inside archives.
func WithExtensions(extensions ...string) Option {
	return func(s *Session) {
		s.loader.Extensions = extensions
	}
}

// WithStrictExtensions makes LoadCartridge reject plain files whose names
// do not end in one of the accepted extensions. By default any file that is
// not an archive is read as a cartridge image.
func WithStrictExtensions() Option {
	return func(s *Session) {
		s.loader.RequireExtension = true
	}
}

// WithMaxROMSize limits the size of cartridge images read by LoadCartridge.
func WithMaxROMSize(n int64) Option {
	return func(s *Session) {
		s.loader.MaxSize = n
	}
}

// Session is the frontend's handle on one emulated console. Lifecycle
// methods (LoadCartridge, Start, Stop, Destroy) are serialized internally;
// SetButton and PollFrame may be called at any time from the frontend
// goroutine while the engine runs.
//
// Calling a lifecycle method out of order, or any method after Destroy,
// panics with a *MisuseError.
type Session struct {
	mu        sync.Mutex
	state     State
	destroyed atomic.Bool

	engine  emucore.Engine
	buttons ButtonRegister
	slot    *FrameSlot
	driver  *driver

	loader  romloader.Loader
	header  *cartridge.Header
	romName string

	logger *log.Logger
}

// NewSession takes ownership of engine and returns a session in the
// Created state. The engine is closed by Destroy.
func NewSession(engine emucore.Engine, opts ...Option) *Session {
	s := &Session{
		state:  StateCreated,
		engine: engine,
		slot:   NewFrameSlot(),
		loader: romloader.Loader{Extensions: emucore.GameBoy().Extensions},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadCartridge reads the cartridge at path (raw or archived), validates
// its header and installs it in the engine. On failure the session stays
// Created and another load may be attempted.
func (s *Session) LoadCartridge(path string) ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("LoadCartridge", StateCreated)

	rom, err := s.loader.Load(path)
	if err != nil {
		s.logger.Printf("Failed to load cartridge: %v", err)
		return NewReport(err)
	}
	return s.install(rom.Name, rom.Data)
}

// LoadCartridgeData is LoadCartridge for an image already in memory.
func (s *Session) LoadCartridgeData(name string, data []byte) ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("LoadCartridgeData", StateCreated)

	return s.install(name, data)
}

func (s *Session) install(name string, data []byte) ErrorReport {
	header, err := cartridge.Parse(data)
	if err != nil {
		err = fmt.Errorf("invalid cartridge %s: %w", name, err)
		s.logger.Printf("Failed to load cartridge: %v", err)
		return NewReport(err)
	}

	if err := s.engine.Load(data); err != nil {
		err = fmt.Errorf("engine rejected cartridge %s: %w", name, err)
		s.logger.Printf("Failed to load cartridge: %v", err)
		return NewReport(err)
	}

	s.header = header
	s.romName = name
	s.state = StateLoaded
	return NewReport(nil)
}

// Reset returns the engine to power-on state without reloading the
// cartridge. It reports false when the engine does not implement
// emucore.Resetter. Allowed in the Loaded and Stopped states.
func (s *Session) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed.Load() || (s.state != StateLoaded && s.state != StateStopped) {
		misuse("Reset", s.state)
	}

	r, ok := s.engine.(emucore.Resetter)
	if !ok {
		return false
	}
	r.Reset()
	return true
}

// Start spawns the emulation goroutine and returns without waiting for it.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("Start", StateLoaded)

	s.driver = newDriver(s.engine, &s.buttons, s.slot)
	s.driver.start()
	s.state = StateRunning
	s.logger.Printf("Started %s (%q, %s)", s.romName, s.header.Title, s.header.MBC)
}

// Stop ends emulation and waits for the emulation goroutine to exit. The
// current step is allowed to finish. A frame published before the stop can
// still be polled. A stopped session cannot be restarted.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("Stop", StateRunning)

	return s.stopLocked()
}

func (s *Session) stopLocked() error {
	err := s.driver.stop()
	s.state = StateStopped
	if err != nil {
		s.logger.Printf("Emulation ended: %v", err)
	}
	return err
}

// Destroy stops emulation if it is running and releases the engine. It
// returns an error wrapping ErrEngineTerminated if the engine ended the
// emulation goroutine on its own. The session must not be used afterwards.
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed.Load() {
		misuse("Destroy", s.state)
	}

	// An engine that died before an explicit Stop was reported by Stop.
	var err error
	if s.state == StateRunning {
		err = s.stopLocked()
	}

	s.destroyed.Store(true)
	s.state = StateStopped
	s.engine.Close()
	s.engine = nil
	return err
}

// SetButton records a press or release for the engine's next step.
func (s *Session) SetButton(b emucore.Button, pressed bool) {
	s.requireAlive("SetButton")
	s.buttons.Set(b, pressed)
}

// Buttons returns the current button mask.
func (s *Session) Buttons() emucore.ButtonMask {
	s.requireAlive("Buttons")
	return s.buttons.Snapshot()
}

// PollFrame returns a copy of the newest frame if one has been completed
// since the previous poll.
func (s *Session) PollFrame() ([]byte, bool) {
	s.requireAlive("PollFrame")
	return s.slot.Take()
}

// PollFrameInto is PollFrame without allocation. dst should hold
// emucore.FrameSize bytes; it is only written when true is returned.
func (s *Session) PollFrameInto(dst []byte) bool {
	s.requireAlive("PollFrameInto")
	return s.slot.TryTake(dst)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cartridge returns the header of the loaded cartridge, or nil before a
// successful load.
func (s *Session) Cartridge() *cartridge.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// Steps returns the number of engine steps executed so far.
func (s *Session) Steps() uint64 {
	s.mu.Lock()
	d := s.driver
	s.mu.Unlock()
	if d == nil {
		return 0
	}
	return d.steps.Load()
}

// FrameStats returns the number of frames published by the engine and the
// number replaced before the frontend polled them.
func (s *Session) FrameStats() (published, dropped uint64) {
	return s.slot.Stats()
}

// Done returns a channel closed when the emulation goroutine exits, either
// because of Stop or because the engine terminated. It is nil before Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil {
		return nil
	}
	return s.driver.exited()
}

func (s *Session) require(op string, want State) {
	if s.destroyed.Load() || s.state != want {
		misuse(op, s.state)
	}
}

func (s *Session) requireAlive(op string) {
	if s.destroyed.Load() {
		misuse(op, StateStopped)
	}
}
