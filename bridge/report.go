package bridge

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLen is the capacity, in bytes, of an ErrorReport message.
const MaxMessageLen = 1024

// ReportKind discriminates load outcomes.
type ReportKind int

const (
	ReportNone ReportKind = iota
	ReportFailure
)

// String returns the display name of the kind.
func (k ReportKind) String() string {
	switch k {
	case ReportNone:
		return "none"
	case ReportFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ErrorReport is the result of one cartridge load attempt.
type ErrorReport struct {
	Kind    ReportKind
	Message string // at most MaxMessageLen bytes of valid UTF-8, no NULs

	err error
}

// NewReport builds the report for a load that finished with err.
func NewReport(err error) ErrorReport {
	if err == nil {
		return ErrorReport{Kind: ReportNone}
	}
	msg := boundMessage(err.Error(), MaxMessageLen)
	if msg == "" {
		msg = "load failed"
	}
	return ErrorReport{
		Kind:    ReportFailure,
		Message: msg,
		err:     err,
	}
}

// OK reports whether the load succeeded.
func (r ErrorReport) OK() bool {
	return r.Kind == ReportNone
}

// Err returns the error behind a failure report, for use with errors.Is.
// It is nil for a successful load.
func (r ErrorReport) Err() error {
	return r.err
}

// String formats the report for logs.
func (r ErrorReport) String() string {
	if r.OK() {
		return "none"
	}
	return "failure: " + r.Message
}

// boundMessage makes s safe to hand across a C-style boundary: valid UTF-8,
// no NUL bytes, and no longer than limit bytes without splitting a rune.
func boundMessage(s string, limit int) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.ReplaceAll(s, "\x00", "")
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
