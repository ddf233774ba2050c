//go:build !statsview

package statsview

import (
	"fmt"
	"io"
)

// Launch reports that the binary was built without statsview.
func Launch(addr string, output io.Writer) {
	fmt.Fprintln(output, "stats server not available: rebuild with -tags statsview")
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
