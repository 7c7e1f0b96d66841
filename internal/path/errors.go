package path

import (
	"errors"
	"fmt"
)

// Error reports a malformed path or a traversal that cannot be completed.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Path is the full path being parsed or written.
	Path string

	// Segment is the offending segment, if any.
	Segment string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes path errors.
type ErrorCode string

const (
	// ErrCodeInvalidPath indicates a malformed path string (empty segment).
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeWildcardWrite indicates a "*" segment in a write path.
	ErrCodeWildcardWrite ErrorCode = "WILDCARD_WRITE"

	// ErrCodeTypeMismatch indicates a segment requires a container the
	// current value is not (e.g. indexing into a string).
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeMissingParent indicates an intermediate container is absent.
	ErrCodeMissingParent ErrorCode = "MISSING_PARENT"

	// ErrCodeIndexOutOfRange indicates a write past the end of an array.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s: %s (path=%q, segment=%q)", e.Code, e.Message, e.Path, e.Segment)
	}
	return fmt.Sprintf("%s: %s (path=%q)", e.Code, e.Message, e.Path)
}

// CodeOf returns the ErrorCode of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsInvalidPath returns true if err is a malformed path error.
func IsInvalidPath(err error) bool {
	return CodeOf(err) == ErrCodeInvalidPath
}

// IsWildcardWrite returns true if err rejects a wildcard in a write path.
func IsWildcardWrite(err error) bool {
	return CodeOf(err) == ErrCodeWildcardWrite
}

// IsTypeMismatch returns true if err is a container type mismatch.
func IsTypeMismatch(err error) bool {
	return CodeOf(err) == ErrCodeTypeMismatch
}

// IsMissingParent returns true if err reports an absent intermediate container.
func IsMissingParent(err error) bool {
	return CodeOf(err) == ErrCodeMissingParent
}

// IsIndexOutOfRange returns true if err reports a write past an array's end.
func IsIndexOutOfRange(err error) bool {
	return CodeOf(err) == ErrCodeIndexOutOfRange
}

func newError(code ErrorCode, p Path, seg Segment, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Path:    p.String(),
		Segment: seg.String(),
		Message: fmt.Sprintf(format, args...),
	}
}
