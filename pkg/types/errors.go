package types

import (
	"errors"
	"fmt"
)

// Error kinds exposed to callers. Use errors.Is against these to classify
// a failure without depending on the concrete error type.
var (
	ErrFormat = errors.New("format error")
	ErrRange  = errors.New("range error")
	ErrLookup = errors.New("lookup error")

	// ErrNotFound marks a LookupError caused by a missing record rather than
	// a failed fetch.
	ErrNotFound = errors.New("record not found")
)

// FormatError reports raw input that violates its documented contract:
// a malformed topology code, an unparsable position or an invalid bond.
type FormatError struct {
	Field  string // Raw record field, e.g. "topologyCode" or "disulfideBonds"
	Index  int    // Entry index within a list field, -1 when not applicable
	Offset int    // Character offset within a code string, -1 when not applicable
	Msg    string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	switch {
	case e.Offset >= 0:
		return fmt.Sprintf("format error: %s at offset %d: %s", e.Field, e.Offset, e.Msg)
	case e.Index >= 0:
		return fmt.Sprintf("format error: %s[%d]: %s", e.Field, e.Index, e.Msg)
	default:
		return fmt.Sprintf("format error: %s: %s", e.Field, e.Msg)
	}
}

// Is reports whether target is ErrFormat
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NewFormatError creates a FormatError that is not tied to a list index or
// character offset.
func NewFormatError(field, format string, args ...any) *FormatError {
	return &FormatError{Field: field, Index: -1, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// RangeError reports a degenerate or unusable window.
type RangeError struct {
	Start  int
	End    int
	Length int
	Msg    string
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("range error: window [%d,%d) on length %d: %s", e.Start, e.End, e.Length, e.Msg)
}

// Is reports whether target is ErrRange
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// LookupError reports that the raw record for ID could not be obtained.
type LookupError struct {
	ID  string
	Err error
}

// Error implements the error interface
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup error: %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying cause
func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLookup
func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}
