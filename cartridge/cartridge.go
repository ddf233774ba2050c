// Package cartridge decodes and validates the Game Boy cartridge header
// located at 0x0100-0x014F of every ROM image.
package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// Header field offsets
const (
	offsetTitle          = 0x0134
	offsetManufacturer   = 0x013F
	offsetCGBFlag        = 0x0143
	offsetNewLicensee    = 0x0144
	offsetSGBFlag        = 0x0146
	offsetType           = 0x0147
	offsetROMSize        = 0x0148
	offsetRAMSize        = 0x0149
	offsetOldLicensee    = 0x014B
	offsetHeaderChecksum = 0x014D
	offsetGlobalChecksum = 0x014E

	// HeaderEnd is the first byte after the cartridge header.
	HeaderEnd = 0x0150
)

// useNewLicensee in the old licensee byte means the title is shortened to
// make room for the manufacturer code and new licensee code.
const useNewLicensee = 0x33

var (
	// ErrTooSmall is returned when the image cannot hold a full header.
	ErrTooSmall = errors.New("invalid cartridge: too small")

	// ErrUnknownType is returned for cartridge type bytes never used by real hardware.
	ErrUnknownType = errors.New("unknown cartridge type")

	// ErrUnsupportedMapper is returned for known cartridge types whose
	// memory bank controller is not emulated.
	ErrUnsupportedMapper = errors.New("unsupported mapper")

	// ErrROMSize is returned when the ROM size byte is not a known value.
	ErrROMSize = errors.New("unsupported rom size")

	// ErrRAMSize is returned when the RAM size byte is not a known value.
	ErrRAMSize = errors.New("unsupported ram size")

	// ErrROMSizeMismatch is returned when the image length differs from
	// the size declared in the header.
	ErrROMSizeMismatch = errors.New("unexpected rom size")

	// ErrBadChecksum is returned when the header checksum does not match.
	ErrBadChecksum = errors.New("header checksum mismatch")
)

// CGBSupport classifies the Color Game Boy compatibility flag.
type CGBSupport int

const (
	CGBNone CGBSupport = iota
	CGBCompatible
	CGBOnly
)

// Header holds the decoded cartridge header.
type Header struct {
	Title          string
	Type           Type
	MBC            MBC
	ROMSize        int
	ROMBanks       int
	RAMSize        int
	RAM            bool
	Battery        bool
	CGB            CGBSupport
	SGB            bool
	HeaderChecksum uint8
	GlobalChecksum uint16
}

// Parse validates rom and decodes its header. The returned errors wrap the
// package sentinel errors so callers can use errors.Is.
func Parse(rom []byte) (*Header, error) {
	if len(rom) < HeaderEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(rom))
	}

	h := &Header{
		Type:           Type(rom[offsetType]),
		HeaderChecksum: rom[offsetHeaderChecksum],
		GlobalChecksum: uint16(rom[offsetGlobalChecksum])<<8 | uint16(rom[offsetGlobalChecksum+1]),
		SGB:            rom[offsetSGBFlag] == 0x03,
	}

	if sum := HeaderChecksum(rom); sum != h.HeaderChecksum {
		return nil, fmt.Errorf("%w: got 0x%02X, expected 0x%02X", ErrBadChecksum, h.HeaderChecksum, sum)
	}

	info, ok := cartTypes[h.Type]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownType, uint8(h.Type))
	}
	if info.mbc == MBCUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMapper, info.name)
	}
	h.MBC = info.mbc
	h.RAM = info.ram
	h.Battery = info.battery

	romSize, ok := romSizes[rom[offsetROMSize]]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrROMSize, rom[offsetROMSize])
	}
	if romSize != len(rom) {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrROMSizeMismatch, len(rom), romSize)
	}
	h.ROMSize = romSize
	h.ROMBanks = romSize / bankSize

	ramSize, ok := ramSizes[rom[offsetRAMSize]]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrRAMSize, rom[offsetRAMSize])
	}
	if h.MBC == MBC2 {
		ramSize = mbc2RAMSize
	}
	h.RAMSize = ramSize

	switch rom[offsetCGBFlag] {
	case 0x80:
		h.CGB = CGBCompatible
	case 0xC0:
		h.CGB = CGBOnly
	}

	h.Title = decodeTitle(rom)

	return h, nil
}

// HeaderChecksum computes the checksum the boot ROM verifies over
// 0x0134-0x014C. rom must be at least HeaderEnd bytes long.
func HeaderChecksum(rom []byte) uint8 {
	var x uint8
	for _, b := range rom[offsetTitle:offsetHeaderChecksum] {
		x = x - b - 1
	}
	return x
}

// decodeTitle extracts the upper-case ASCII title. Newer cartridges use the
// last bytes of the title area for the manufacturer code and CGB flag.
func decodeTitle(rom []byte) string {
	end := offsetNewLicensee
	if rom[offsetOldLicensee] == useNewLicensee {
		end = offsetManufacturer
	}
	if rom[offsetCGBFlag]&0x80 != 0 && end > offsetCGBFlag {
		end = offsetCGBFlag
	}

	var sb strings.Builder
	for _, b := range rom[offsetTitle:end] {
		if b == 0 {
			break
		}
		if b < 0x20 || b > 0x7E {
			sb.WriteByte('?')
			continue
		}
		sb.WriteByte(b)
	}
	return strings.TrimRight(sb.String(), " ")
}
