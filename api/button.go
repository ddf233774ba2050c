package emucore

// Button identifies one of the eight Game Boy inputs. The value is the bit
// position the button occupies in a ButtonMask and never changes.
type Button int

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// NumButtons is the number of bits used in a ButtonMask.
const NumButtons = 8

// Buttons lists every button in bit order.
var Buttons = [NumButtons]Button{
	ButtonRight,
	ButtonLeft,
	ButtonUp,
	ButtonDown,
	ButtonA,
	ButtonB,
	ButtonSelect,
	ButtonStart,
}

var buttonNames = [NumButtons]string{
	"right",
	"left",
	"up",
	"down",
	"a",
	"b",
	"select",
	"start",
}

// Valid reports whether b is one of the eight defined buttons.
func (b Button) Valid() bool {
	return b >= ButtonRight && b <= ButtonStart
}

// Mask returns the single-bit mask for b, or 0 if b is not valid.
func (b Button) Mask() ButtonMask {
	if !b.Valid() {
		return 0
	}
	return ButtonMask(1) << uint(b)
}

// String returns the lowercase button name used on external interfaces.
func (b Button) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return buttonNames[b]
}

// ParseButton returns the button with the given name. Matching is exact and
// lowercase, e.g. "right" or "select".
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// ButtonMask packs the state of all buttons into one byte, 1 = pressed.
type ButtonMask uint8

// Pressed reports whether b is set in the mask.
func (m ButtonMask) Pressed(b Button) bool {
	return m&b.Mask() != 0
}

// With returns a copy of m with b set or cleared.
func (m ButtonMask) With(b Button, pressed bool) ButtonMask {
	if pressed {
		return m | b.Mask()
	}
	return m &^ b.Mask()
}
