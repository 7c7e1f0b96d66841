package mutation

import (
	"errors"
	"fmt"
)

// Error reports a mutation that cannot apply to the value it found.
// Path errors raised while writing are returned as *path.Error unchanged.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Kind is the mutation kind that failed.
	Kind Kind

	// Path is the mutation's write path.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any (e.g. an update function's error).
	Err error
}

// ErrorCode categorizes mutation errors.
type ErrorCode string

const (
	// ErrCodeNotArray indicates push or removeWhere found a non-array.
	ErrCodeNotArray ErrorCode = "NOT_ARRAY"

	// ErrCodeNotObject indicates removeKey's parent is not an object.
	ErrCodeNotObject ErrorCode = "NOT_OBJECT"

	// ErrCodeUpdateFailed indicates an update function returned an error.
	ErrCodeUpdateFailed ErrorCode = "UPDATE_FAILED"

	// ErrCodeInvalidValue indicates an absent value was supplied for writing.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s: %s", e.Code, e.Kind, e.Path, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotArray returns true if err reports a push/removeWhere on a non-array.
func IsNotArray(err error) bool {
	var me *Error
	return errors.As(err, &me) && me.Code == ErrCodeNotArray
}

// IsNotObject returns true if err reports a removeKey on a non-object.
func IsNotObject(err error) bool {
	var me *Error
	return errors.As(err, &me) && me.Code == ErrCodeNotObject
}

// IsUpdateFailed returns true if err wraps an update function failure.
func IsUpdateFailed(err error) bool {
	var me *Error
	return errors.As(err, &me) && me.Code == ErrCodeUpdateFailed
}
