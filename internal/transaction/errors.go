package transaction

import (
	"errors"
	"fmt"

	"github.com/roach88/statetree/internal/mutation"
)

// Error describes which mutation of a transaction failed and why. It is the
// only error kind Execute produces; the cause is available via Unwrap.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Index is the position of the failing mutation in the list.
	Index int

	// Description is the failing mutation's description.
	Description string

	// Kind is the failing mutation's kind.
	Kind mutation.Kind

	// Path is the failing mutation's write path.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes transaction errors.
type ErrorCode string

const (
	// ErrCodeTransactionFailed indicates a mutation failed and the
	// transaction was rolled back.
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: mutation %d (%s) %s", e.Code, e.Index, e.Description, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransactionError returns true if err is a transaction failure.
// Uses errors.As to handle wrapped errors.
func IsTransactionError(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == ErrCodeTransactionFailed
}

// FailedMutation returns the index and description of the mutation that
// failed, if err is a transaction failure.
func FailedMutation(err error) (int, string, bool) {
	var te *Error
	if !errors.As(err, &te) {
		return 0, "", false
	}
	return te.Index, te.Description, true
}

func newError(index int, m mutation.Mutation, message string, cause error) *Error {
	return &Error{
		Code:        ErrCodeTransactionFailed,
		Index:       index,
		Description: m.Description,
		Kind:        m.Kind,
		Path:        m.Path,
		Message:     message,
		Err:         cause,
	}
}
