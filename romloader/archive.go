package romloader

import (
	"fmt"
	"io"
	"io/fs"
)

// archiveEntry is the subset of *zip.File and *sevenzip.File used for
// extraction.
type archiveEntry interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

// extractFirst reads the first regular entry whose name matches one of the
// loader's extensions.
func extractFirst[E archiveEntry](l Loader, entries []E) (*ROM, error) {
	for _, e := range entries {
		info := e.FileInfo()
		if info.IsDir() || !isROMFile(info.Name(), l.Extensions) {
			continue
		}
		return l.readEntry(e, info.Name())
	}
	return nil, ErrNoROMFile
}

func (l Loader) readEntry(e archiveEntry, name string) (*ROM, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()

	data, err := l.limitedRead(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return &ROM{Data: data, Name: name}, nil
}
