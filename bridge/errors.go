package bridge

import (
	"errors"
	"fmt"
)

// ErrEngineTerminated is returned by Stop and Destroy when the engine ended
// the emulation goroutine on its own, by panicking or by returning an error
// from Step.
var ErrEngineTerminated = errors.New("engine terminated abnormally")

// MisuseError is the panic value for lifecycle calls made out of order or
// after Destroy. These are programming errors, not runtime conditions.
type MisuseError struct {
	Op    string
	State State
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("bridge: %s not permitted in state %s", e.Op, e.State)
}

func misuse(op string, state State) {
	panic(&MisuseError{Op: op, State: state})
}
