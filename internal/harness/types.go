package harness

import (
	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/tree"
)

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`

	// Seq is the record sequence number of a committed step, 0 otherwise.
	Seq int64 `json:"seq"`

	// Error is the transaction error message of a rejected step.
	Error string `json:"error,omitempty"`

	// FailedIndex is the index of the failing mutation, -1 when valid.
	FailedIndex int `json:"failed_index"`

	Diff diff.Diff `json:"diff"`
}

// Notification is one observer callback delivered during a step.
type Notification struct {
	Step    int        `json:"step"`
	Pattern string     `json:"pattern"`
	Path    string     `json:"path"`
	From    tree.Value `json:"from,omitempty"`
	To      tree.Value `json:"to,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success: every step matched its
	// expected validity and every assertion held.
	Pass bool `json:"pass"`

	Steps         []StepResult   `json:"steps"`
	Notifications []Notification `json:"notifications"`

	// FinalState is the store state after the last step.
	FinalState tree.Value `json:"final_state"`

	// HistoryLength is the number of records in the store's history.
	HistoryLength int `json:"history_length"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// entities resolves entities_with_component assertions.
	entities func(component string) []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Steps:         []StepResult{},
		Notifications: []Notification{},
		Errors:        []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// NotificationCount returns how many notifications pattern received.
func (r *Result) NotificationCount(pattern string) int {
	n := 0
	for _, note := range r.Notifications {
		if note.Pattern == pattern {
			n++
		}
	}
	return n
}
