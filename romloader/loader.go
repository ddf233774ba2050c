// Package romloader reads cartridge images from disk, including images
// stored inside compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// DefaultMaxSize is the largest image accepted by a zero Loader. It matches
// the largest ROM size a cartridge header can declare.
const DefaultMaxSize = 8 * 1024 * 1024

var (
	// ErrNotFound is returned when the path does not exist.
	ErrNotFound = errors.New("cartridge not found")

	// ErrNoROMFile is returned when no ROM file is found in an archive
	ErrNoROMFile = errors.New("no ROM file found in archive")

	// ErrUnsupportedFormat is returned for unrecognized file formats
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when extracted content exceeds size limit
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

// Format is the container a ROM image was read from.
type Format int

const (
	FormatUnknown Format = iota
	FormatRaw
	FormatZIP
	Format7z
	FormatGzip
	FormatRAR
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatGzip:
		return "gzip"
	case FormatRAR:
		return "rar"
	default:
		return "unknown"
	}
}

// ROM is a loaded cartridge image.
type ROM struct {
	Data   []byte
	Name   string // basename of the file (or archive entry) the data came from
	Source Format
}

// Loader reads ROM images. Extensions selects the entry extracted from an
// archive. A file that is not an archive is read as-is whatever its name,
// unless RequireExtension is set.
type Loader struct {
	Extensions       []string
	MaxSize          int64 // 0 means DefaultMaxSize
	RequireExtension bool  // reject non-archive files not matching Extensions
}

// Load is shorthand for Loader{Extensions: extensions}.Load(path).
func Load(path string, extensions []string) (*ROM, error) {
	return Loader{Extensions: extensions}.Load(path)
}

// Load reads a ROM from path. Archives are detected via magic bytes first
// and extension second; the first entry matching one of the loader's
// extensions is extracted. Anything else is read as-is.
func (l Loader) Load(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path, l.Extensions)
	if format == FormatUnknown && !l.RequireExtension {
		format = FormatRaw
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek file: %w", err)
	}

	var rom *ROM
	switch format {
	case FormatRaw:
		data, err := l.limitedRead(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read ROM: %w", err)
		}
		rom = &ROM{Data: data, Name: filepath.Base(path)}
	case FormatZIP:
		rom, err = l.extractFromZIP(path)
	case Format7z:
		rom, err = l.extractFrom7z(path)
	case FormatGzip:
		rom, err = l.extractFromGzip(f, path)
	case FormatRAR:
		rom, err = l.extractFromRAR(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	rom.Source = format
	return rom, nil
}

// detectFormat determines the file format based on magic bytes and extension.
// The extensions parameter lists valid ROM file extensions (e.g. []string{".gb"}).
func detectFormat(header []byte, path string, extensions []string) Format {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return FormatZIP
	case bytes.HasPrefix(header, magicRAR):
		return FormatRAR
	case bytes.HasPrefix(header, magic7z):
		return Format7z
	case bytes.HasPrefix(header, magicGzip):
		return FormatGzip
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZIP
	case strings.HasSuffix(lower, ".7z"):
		return Format7z
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatGzip
	case strings.HasSuffix(lower, ".rar"):
		return FormatRAR
	}

	if isROMFile(path, extensions) {
		return FormatRaw
	}
	return FormatUnknown
}

// isROMFile checks if a filename has one of the given ROM extensions (case-insensitive)
func isROMFile(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (l Loader) maxSize() int64 {
	if l.MaxSize > 0 {
		return l.MaxSize
	}
	return DefaultMaxSize
}

// limitedRead reads from r up to the size limit, returning an error if exceeded
func (l Loader) limitedRead(r io.Reader) ([]byte, error) {
	limit := l.maxSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
