package cartridge

import "fmt"

// MBC identifies the memory bank controller family of a cartridge.
type MBC int

const (
	MBCNone MBC = iota
	MBC1
	MBC2
	MBC3
	MBC5
	MBCUnsupported
)

// String returns the display name of the controller.
func (m MBC) String() string {
	switch m {
	case MBCNone:
		return "ROM only"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	default:
		return "unsupported"
	}
}

// Type is the raw cartridge type byte at 0x0147.
type Type uint8

type typeInfo struct {
	name    string
	mbc     MBC
	ram     bool
	battery bool
}

// cartTypes lists every cartridge type byte that has been seen on real
// hardware. Types outside this table are rejected as unknown; types inside
// it whose controller is not emulated are rejected as unsupported.
var cartTypes = map[Type]typeInfo{
	0x00: {"ROM ONLY", MBCNone, false, false},
	0x01: {"MBC1", MBC1, false, false},
	0x02: {"MBC1+RAM", MBC1, true, false},
	0x03: {"MBC1+RAM+BATTERY", MBC1, true, true},
	0x05: {"MBC2", MBC2, false, false},
	0x06: {"MBC2+BATTERY", MBC2, false, true},
	0x08: {"ROM+RAM", MBCNone, true, false},
	0x09: {"ROM+RAM+BATTERY", MBCNone, true, true},
	0x0B: {"MMM01", MBCUnsupported, false, false},
	0x0C: {"MMM01+RAM", MBCUnsupported, true, false},
	0x0D: {"MMM01+RAM+BATTERY", MBCUnsupported, true, true},
	0x0F: {"MBC3+TIMER+BATTERY", MBC3, false, true},
	0x10: {"MBC3+TIMER+RAM+BATTERY", MBC3, true, true},
	0x11: {"MBC3", MBC3, false, false},
	0x12: {"MBC3+RAM", MBC3, true, false},
	0x13: {"MBC3+RAM+BATTERY", MBC3, true, true},
	0x15: {"MBC4", MBCUnsupported, false, false},
	0x16: {"MBC4+RAM", MBCUnsupported, true, false},
	0x17: {"MBC4+RAM+BATTERY", MBCUnsupported, true, true},
	0x19: {"MBC5", MBC5, false, false},
	0x1A: {"MBC5+RAM", MBC5, true, false},
	0x1B: {"MBC5+RAM+BATTERY", MBC5, true, true},
	0x1C: {"MBC5+RUMBLE", MBC5, false, false},
	0x1D: {"MBC5+RUMBLE+RAM", MBC5, true, false},
	0x1E: {"MBC5+RUMBLE+RAM+BATTERY", MBC5, true, true},
	0xFC: {"POCKET CAMERA", MBCUnsupported, false, false},
	0xFD: {"BANDAI TAMA5", MBCUnsupported, false, false},
	0xFE: {"HuC3", MBCUnsupported, false, false},
	0xFF: {"HuC1+RAM+BATTERY", MBCUnsupported, true, true},
}

// String returns the Pan Docs name of the cartridge type.
func (t Type) String() string {
	if info, ok := cartTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("unknown (0x%02X)", uint8(t))
}

// romSizes maps the 0x0148 header byte to the ROM size in bytes.
var romSizes = map[uint8]int{
	0x00: 32 * 1024,
	0x01: 64 * 1024,
	0x02: 128 * 1024,
	0x03: 256 * 1024,
	0x04: 512 * 1024,
	0x05: 1024 * 1024,
	0x06: 2 * 1024 * 1024,
	0x07: 4 * 1024 * 1024,
	0x08: 8 * 1024 * 1024,
	0x52: 1152 * 1024,
	0x53: 1280 * 1024,
	0x54: 1536 * 1024,
}

// ramSizes maps the 0x0149 header byte to the external RAM size in bytes.
var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// bankSize is the size of one switchable ROM bank.
const bankSize = 16 * 1024

// mbc2RAMSize is the built-in RAM of an MBC2 chip (512 half-bytes).
const mbc2RAMSize = 512
