package bridge

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewReport_Success(t *testing.T) {
	r := NewReport(nil)
	if r.Kind != ReportNone || !r.OK() {
		t.Fatalf("expected none, got %v", r.Kind)
	}
	if r.Message != "" || r.Err() != nil {
		t.Fatalf("success report should be empty: %+v", r)
	}
	if r.String() != "none" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestNewReport_Failure(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", os.ErrNotExist)
	r := NewReport(err)
	if r.Kind != ReportFailure || r.OK() {
		t.Fatalf("expected failure, got %v", r.Kind)
	}
	if r.Message != err.Error() {
		t.Errorf("Message = %q, want %q", r.Message, err.Error())
	}
	if !errors.Is(r.Err(), os.ErrNotExist) {
		t.Errorf("Err() should wrap the cause")
	}
	if !strings.HasPrefix(r.String(), "failure: ") {
		t.Errorf("String() = %q", r.String())
	}
}

func TestNewReport_EmptyMessage(t *testing.T) {
	r := NewReport(errors.New(""))
	if r.Kind != ReportFailure || r.Message == "" {
		t.Fatalf("empty error text should still produce a message: %+v", r)
	}
}

func TestBoundMessage(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"short", "cartridge not found", "cartridge not found"},
		{"exact", strings.Repeat("x", MaxMessageLen), strings.Repeat("x", MaxMessageLen)},
		{"long ascii", strings.Repeat("y", MaxMessageLen+100), strings.Repeat("y", MaxMessageLen)},
		// 1023 ASCII bytes followed by a 2-byte rune: cutting at 1024 would split it
		{"rune boundary", strings.Repeat("a", MaxMessageLen-1) + "é", strings.Repeat("a", MaxMessageLen-1)},
		{"nul bytes", "bad\x00header", "badheader"},
		{"invalid utf8", "bad\xffbyte", "bad�byte"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := boundMessage(tc.in, MaxMessageLen)
			if got != tc.want {
				t.Errorf("boundMessage() = %q (len %d), want len %d", got, len(got), len(tc.want))
			}
			if len(got) > MaxMessageLen {
				t.Errorf("message length %d exceeds %d", len(got), MaxMessageLen)
			}
			if !utf8.ValidString(got) {
				t.Errorf("message is not valid UTF-8")
			}
		})
	}
}

func TestNewReport_Truncates(t *testing.T) {
	long := errors.New(strings.Repeat("日本", 400)) // 2400 bytes
	r := NewReport(long)
	if len(r.Message) > MaxMessageLen {
		t.Fatalf("message length %d exceeds %d", len(r.Message), MaxMessageLen)
	}
	if !utf8.ValidString(r.Message) {
		t.Fatal("truncated message is not valid UTF-8")
	}
	if !strings.HasPrefix(long.Error(), r.Message) {
		t.Fatal("truncated message should be a prefix of the original")
	}
	if r.Err() != long {
		t.Fatal("Err() should return the original error")
	}
}

func TestReportKindString(t *testing.T) {
	if ReportNone.String() != "none" || ReportFailure.String() != "failure" {
		t.Fatalf("unexpected names %q %q", ReportNone, ReportFailure)
	}
}
