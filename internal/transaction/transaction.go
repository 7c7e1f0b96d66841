// Package transaction applies ordered mutation lists atomically.
//
// Execute threads the state through each mutation in order. If any
// mutation fails, including by panicking, all partial work is discarded and
// the original state is returned with an empty diff. Execute never panics
// and never returns a Go error; failure is reported in Result.
package transaction

import (
	"fmt"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/tree"
)

// Effect is a derived event produced alongside a transaction, keyed by the
// mutation that caused it. No effects are produced yet; the field exists so
// that consumers can be written against it.
type Effect struct {
	Source  string     `json:"source"`
	Name    string     `json:"name"`
	Payload tree.Value `json:"payload,omitempty"`
}

// Result is the outcome of Execute.
//
// On success State is the final state, Diff holds the changes from the
// input state and Valid is true. On failure State is the input state,
// Diff is empty, Valid is false and Err is a *Error.
type Result struct {
	State   tree.Value
	Diff    diff.Diff
	Effects []Effect
	Valid   bool
	Err     error
}

// Execute applies mutations to state in order.
func Execute(state tree.Value, mutations []mutation.Mutation) Result {
	current := state
	for i, m := range mutations {
		next, err := applyOne(current, m)
		if err != nil {
			return Fail(state, newError(i, m, "failed", err))
		}
		current = next
	}

	return Result{
		State:   current,
		Diff:    diff.Compute(state, current),
		Effects: []Effect{},
		Valid:   true,
	}
}

// Fail builds the result of a rejected transaction on state.
func Fail(state tree.Value, err error) Result {
	return Result{
		State:   state,
		Diff:    diff.Diff{},
		Effects: []Effect{},
		Valid:   false,
		Err:     err,
	}
}

// applyOne converts a panic inside a mutation into an error.
func applyOne(state tree.Value, m mutation.Mutation) (next tree.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			if rErr, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", rErr)
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()
	return m.Apply(state)
}
