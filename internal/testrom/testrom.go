// Package testrom builds minimal cartridge images with a valid header for
// tests in other packages.
package testrom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/gbbridge/cartridge"
)

// Options selects the header fields of a generated image.
type Options struct {
	Title   string
	Type    uint8 // 0x0147
	ROMSize uint8 // 0x0148
	RAMSize uint8 // 0x0149
	CGB     uint8 // 0x0143
}

// Build returns an image of the size declared by opts.ROMSize with a valid
// header checksum. Only 32KB and 64KB sizes are supported.
func Build(opts Options) []byte {
	size := 32 * 1024
	if opts.ROMSize == 0x01 {
		size = 64 * 1024
	}
	rom := make([]byte, size)

	// Entry point: nop; jp 0x0150
	copy(rom[0x0100:], []byte{0x00, 0xC3, 0x50, 0x01})
	copy(rom[0x0134:0x0143], opts.Title)
	rom[0x0143] = opts.CGB
	rom[0x0147] = opts.Type
	rom[0x0148] = opts.ROMSize
	rom[0x0149] = opts.RAMSize
	rom[0x014B] = 0x01
	rom[0x014D] = cartridge.HeaderChecksum(rom)

	for i := cartridge.HeaderEnd; i < len(rom); i++ {
		rom[i] = byte(i * 7)
	}
	return rom
}

// Valid returns a 32KB ROM-only image titled "TEST".
func Valid() []byte {
	return Build(Options{Title: "TEST"})
}

// WriteFile writes data to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
