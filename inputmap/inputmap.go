// Package inputmap translates frontend key events into bridge buttons.
// Keys are identified by their DOM keyCode, as browsers report them in
// KeyboardEvent.which, and by short names used in configuration files.
package inputmap

import (
	"fmt"

	emucore "github.com/user-none/gbbridge/api"
)

// Key is a DOM keyCode.
type Key int

// keyNameMap maps short key name strings to key codes.
var keyNameMap = map[string]Key{
	"Backspace":  8,
	"Tab":        9,
	"Enter":      13,
	"Shift":      16,
	"Control":    17,
	"Alt":        18,
	"Escape":     27,
	"Space":      32,
	"ArrowLeft":  37,
	"ArrowUp":    38,
	"ArrowRight": 39,
	"ArrowDown":  40,
	"Semicolon":  186,
	"=":          187,
	"Comma":      188,
	"-":          189,
	"Period":     190,
	"Slash":      191,
	"[":          219,
	"]":          221,
	"'":          222,
}

// reservedKeys are used by frontends for non-gameplay functions and cannot
// be bound to buttons.
var reservedKeys = map[Key]bool{
	27: true, // Escape
	9:  true, // Tab
}

var keyToName map[Key]string

func init() {
	// Letters and digits share their ASCII code
	for c := 'A'; c <= 'Z'; c++ {
		keyNameMap[string(c)] = Key(c)
	}
	for c := '0'; c <= '9'; c++ {
		keyNameMap[string(c)] = Key(c)
	}

	keyToName = make(map[Key]string, len(keyNameMap))
	for name, key := range keyNameMap {
		keyToName[key] = name
	}
}

// ParseKey converts a key name string to a Key.
// Returns the key and true if the name is valid, or 0 and false otherwise.
func ParseKey(name string) (Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// KeyToName converts a Key to its name string.
// Returns the name and true if the key has a name, or "" and false otherwise.
func KeyToName(k Key) (string, bool) {
	name, ok := keyToName[k]
	return name, ok
}

// IsReservedKey returns true if the key is reserved for frontend functions.
func IsReservedKey(k Key) bool {
	return reservedKeys[k]
}

// Map binds keys to buttons. A button may have several keys.
type Map struct {
	keys map[Key]emucore.Button
}

// BuildDefaultMapping binds each button's DefaultKey plus the arrow keys for
// the d-pad.
func BuildDefaultMapping(buttons []emucore.ButtonInfo) *Map {
	m := &Map{keys: make(map[Key]emucore.Button)}
	for _, btn := range buttons {
		if k, ok := ParseKey(btn.DefaultKey); ok && !reservedKeys[k] {
			m.keys[k] = btn.Button
		}
	}
	m.keys[keyNameMap["ArrowRight"]] = emucore.ButtonRight
	m.keys[keyNameMap["ArrowLeft"]] = emucore.ButtonLeft
	m.keys[keyNameMap["ArrowUp"]] = emucore.ButtonUp
	m.keys[keyNameMap["ArrowDown"]] = emucore.ButtonDown
	return m
}

// BuildMappingFromConfig starts from the defaults and replaces the primary
// key of every button named in overrides (button display name -> key name,
// e.g. "A" -> "J"). Invalid or reserved keys are skipped and reported in
// the returned error; the mapping is usable either way.
func BuildMappingFromConfig(buttons []emucore.ButtonInfo, overrides map[string]string) (*Map, error) {
	m := BuildDefaultMapping(buttons)

	var bad []string
	for _, btn := range buttons {
		override, ok := overrides[btn.Name]
		if !ok {
			continue
		}
		k, ok := ParseKey(override)
		if !ok || reservedKeys[k] {
			bad = append(bad, fmt.Sprintf("%s=%q", btn.Name, override))
			continue
		}
		if def, ok := ParseKey(btn.DefaultKey); ok && m.keys[def] == btn.Button {
			delete(m.keys, def)
		}
		m.keys[k] = btn.Button
	}

	if len(bad) > 0 {
		return m, fmt.Errorf("invalid key bindings: %v", bad)
	}
	return m, nil
}

// Lookup returns the button bound to k.
func (m *Map) Lookup(k Key) (emucore.Button, bool) {
	b, ok := m.keys[k]
	return b, ok
}

// LookupName returns the button bound to the named key.
func (m *Map) LookupName(name string) (emucore.Button, bool) {
	k, ok := ParseKey(name)
	if !ok {
		return 0, false
	}
	return m.Lookup(k)
}

// KeysFor returns the names of every key bound to b.
func (m *Map) KeysFor(b emucore.Button) []string {
	var names []string
	for k, bound := range m.keys {
		if bound == b {
			if name, ok := KeyToName(k); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// ButtonSetter is satisfied by *bridge.Session.
type ButtonSetter interface {
	SetButton(b emucore.Button, pressed bool)
}

// Dispatch forwards a key event to s. Unmapped keys are ignored and
// reported as false.
func (m *Map) Dispatch(s ButtonSetter, k Key, pressed bool) bool {
	b, ok := m.Lookup(k)
	if !ok {
		return false
	}
	s.SetButton(b, pressed)
	return true
}
