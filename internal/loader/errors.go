package loader

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the input path does not resolve to readable
// data. Wrapped with the offending path; check with errors.Is.
var ErrNotFound = errors.New("spectrum file not found")

// DataFormatError describes a file that exists but does not parse into two
// equal-length numeric columns named wavelength and absorption.
//
// Design decision: This is a struct rather than a sentinel because callers
// reporting the failure need the position (file and line) to be useful to
// whoever has to fix the export.
type DataFormatError struct {
	// Path is the file that failed to parse.
	Path string

	// Line is the 1-based line number where parsing failed.
	// Zero when the problem is not tied to a single line (e.g. empty body).
	Line int

	// Reason is a human-readable description of the problem.
	Reason string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying parse error for errors.Is/As chains.
func (e *DataFormatError) Unwrap() error {
	return e.Err
}
