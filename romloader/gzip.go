package romloader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// extractFromGzip extracts the ROM from a plain .gz file or the first ROM
// entry of a tar.gz archive. r is positioned at the start of the file.
func (l Loader) extractFromGzip(r io.Reader, path string) (*ROM, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return l.extractFromTar(gr)
	}

	// Plain .gz: the decompressed content is the ROM, named after the
	// archive without its .gz suffix
	data, err := l.limitedRead(gr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip: %w", err)
	}

	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return &ROM{Data: data, Name: name}, nil
}

// extractFromTar extracts the first ROM file from a tar stream
func (l Loader) extractFromTar(r io.Reader) (*ROM, error) {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isROMFile(header.Name, l.Extensions) {
			continue
		}

		name := filepath.Base(header.Name)
		data, err := l.limitedRead(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from tar: %w", name, err)
		}
		return &ROM{Data: data, Name: name}, nil
	}

	return nil, ErrNoROMFile
}
