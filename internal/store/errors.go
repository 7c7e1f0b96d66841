package store

import (
	"errors"
	"fmt"
)

// Error reports a dispatch the store refused to run.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeReentrantDispatch indicates Dispatch was called from a commit
	// hook or observer callback while a commit was in progress.
	ErrCodeReentrantDispatch ErrorCode = "REENTRANT_DISPATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsReentrantError returns true if err rejects a reentrant dispatch.
// Uses errors.As to handle wrapped errors.
func IsReentrantError(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == ErrCodeReentrantDispatch
}

func newReentrantError() *Error {
	return &Error{
		Code:    ErrCodeReentrantDispatch,
		Message: "dispatch called while a commit is in progress; use Defer for follow-on changes",
	}
}
