package romloader

import (
	"archive/zip"
	"fmt"
)

// extractFromZIP extracts the first ROM file from a ZIP archive
func (l Loader) extractFromZIP(path string) (*ROM, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	return extractFirst(l, r.File)
}
