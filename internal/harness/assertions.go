package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/query"
	"github.com/roach88/statetree/internal/tree"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertStateEquals:
		return assertStateEquals(result.FinalState, a)
	case AssertStateAbsent:
		return assertStateAbsent(result.FinalState, a)
	case AssertDiffContains:
		return assertDiffContains(result.Steps, a)
	case AssertHistoryLength:
		return assertCount(AssertHistoryLength, *a.Count, result.HistoryLength)
	case AssertEntitiesWithComponent:
		return assertEntities(result, a)
	case AssertNotificationCount:
		return assertCount(AssertNotificationCount+" "+a.Pattern, *a.Count, result.NotificationCount(a.Pattern))
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertStateEquals reads Path (wildcards allowed) from the final state.
func assertStateEquals(state tree.Value, a Assertion) error {
	want, err := tree.FromGo(a.Value)
	if err != nil {
		return fmt.Errorf("state_equals %s: %w", a.Path, err)
	}
	got, err := query.Get(state, a.Path)
	if err != nil {
		return err
	}
	if !tree.Equal(want, got) {
		return &AssertionError{
			Type:     AssertStateEquals,
			Expected: fmt.Sprintf("%s = %s", displayPath(a.Path), render(want)),
			Actual:   fmt.Sprintf("%s = %s", displayPath(a.Path), render(got)),
		}
	}
	return nil
}

func assertStateAbsent(state tree.Value, a Assertion) error {
	got, err := query.Get(state, a.Path)
	if err != nil {
		return err
	}
	if got != nil {
		return &AssertionError{
			Type:     AssertStateAbsent,
			Expected: fmt.Sprintf("%s absent", a.Path),
			Actual:   fmt.Sprintf("%s = %s", a.Path, render(got)),
		}
	}
	return nil
}

// assertDiffContains looks for an entry at Path in one step's diff. From
// and To are compared only when given.
func assertDiffContains(steps []StepResult, a Assertion) error {
	idx := *a.Step
	if idx >= len(steps) {
		return fmt.Errorf("diff_contains: step %d did not run", idx)
	}
	want, err := path.ParsePattern(a.Path)
	if err != nil {
		return err
	}
	from, err := optionalValue(a.From)
	if err != nil {
		return err
	}
	to, err := optionalValue(a.To)
	if err != nil {
		return err
	}

	d := steps[idx].Diff
	for _, e := range d.Entries {
		if !path.Match(want, e.Path) {
			continue
		}
		if from != nil && !tree.Equal(from, e.From) {
			continue
		}
		if to != nil && !tree.Equal(to, e.To) {
			continue
		}
		return nil
	}

	expected := displayPath(a.Path)
	if from != nil || to != nil {
		expected = diff.Entry{Path: want, From: from, To: to}.String()
	}
	return &AssertionError{
		Type:     AssertDiffContains,
		Expected: fmt.Sprintf("step %d diff contains %s", idx, expected),
		Actual:   describeDiff(d),
	}
}

func assertEntities(result *Result, a Assertion) error {
	var got []string
	if result.entities != nil {
		got = result.entities(a.Component)
	}
	want := slices.Clone(a.Entities)
	slices.Sort(want)
	if !slices.Equal(want, got) && !(len(want) == 0 && len(got) == 0) {
		return &AssertionError{
			Type:     AssertEntitiesWithComponent,
			Expected: fmt.Sprintf("%s: %v", a.Component, want),
			Actual:   fmt.Sprintf("%s: %v", a.Component, got),
		}
	}
	return nil
}

func assertCount(kind string, want, got int) error {
	if want != got {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%d", want),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// optionalValue converts an assertion operand; a missing operand is nil.
func optionalValue(v any) (tree.Value, error) {
	if v == nil {
		return nil, nil
	}
	return tree.FromGo(v)
}

func describeDiff(d diff.Diff) string {
	if d.Empty() {
		return "empty diff"
	}
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

func displayPath(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}

func render(v tree.Value) string {
	if v == nil {
		return "<absent>"
	}
	data, err := tree.Marshal(v)
	if err != nil {
		return string(tree.KindOf(v))
	}
	return string(data)
}
