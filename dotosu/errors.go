package dotosu

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. A *ParseError always unwraps to exactly one of these.
var (
	// ErrInvalidValue indicates a malformed or out-of-domain value.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMissingDeclaration indicates CircleSize or SliderMultiplier was never set.
	ErrMissingDeclaration = errors.New("missing declaration")

	// ErrOrderingViolation indicates an inherited first timing point or a hit
	// object that precedes every timing point.
	ErrOrderingViolation = errors.New("ordering violation")

	// ErrRangeViolation indicates a column index that cannot be made valid.
	ErrRangeViolation = errors.New("range violation")

	// ErrUnsupportedMode indicates a chart for a mode other than mania.
	ErrUnsupportedMode = errors.New("unsupported mode")

	// ErrIOFailure wraps failures of the file loading collaborator.
	ErrIOFailure = errors.New("io failure")
)

// ParseError reports why a single chart failed. Line is 1-based and zero when
// the failure is not tied to a line (post-condition checks, I/O).
type ParseError struct {
	File   string
	Line   int
	Record string
	Kind   error
	Msg    string
	Cause  error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Kind.Error())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Record != "" {
		fmt.Fprintf(&sb, " (%q)", e.Record)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// mustf guards internal invariants. It is never used for untrusted input.
func mustf(cond bool, format string, a ...any) {
	if !cond {
		panic(fmt.Sprintf("dotosu: "+format, a...))
	}
}
