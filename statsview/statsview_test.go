//go:build !statsview

package statsview

import (
	"bytes"
	"strings"
	"testing"
)

func TestStubLaunch(t *testing.T) {
	if Available() {
		t.Fatal("stub build should not report statsview as available")
	}
	var buf bytes.Buffer
	Launch("", &buf)
	if !strings.Contains(buf.String(), "-tags statsview") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
