package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/statetree/internal/tree"
)

// Trace returns the canonical trace of a run: every step's validity and
// diff, every notification, the final state and its hash. It is the
// content of golden files.
func (r *Result) Trace(scenarioName string) (tree.Object, error) {
	steps := make(tree.Array, len(r.Steps))
	for i, s := range r.Steps {
		step := tree.Obj(
			tree.P("index", tree.Int(s.Index)),
			tree.P("valid", tree.Bool(s.Valid)),
			tree.P("seq", tree.Int(s.Seq)),
			tree.P("diff", s.Diff.Value()),
		)
		if s.Name != "" {
			step["name"] = tree.String(s.Name)
		}
		if !s.Valid {
			step["failed_index"] = tree.Int(s.FailedIndex)
		}
		steps[i] = step
	}

	notes := make(tree.Array, len(r.Notifications))
	for i, n := range r.Notifications {
		note := tree.Obj(
			tree.P("step", tree.Int(n.Step)),
			tree.P("pattern", tree.String(n.Pattern)),
			tree.P("path", tree.String(n.Path)),
		)
		if n.From != nil {
			note["from"] = n.From
		}
		if n.To != nil {
			note["to"] = n.To
		}
		notes[i] = note
	}

	final := r.FinalState
	if final == nil {
		final = tree.Null{}
	}
	hash, err := tree.Hash(final)
	if err != nil {
		return nil, err
	}

	return tree.Obj(
		tree.P("scenario", tree.String(scenarioName)),
		tree.P("steps", steps),
		tree.P("notifications", notes),
		tree.P("final_state", final),
		tree.P("final_hash", tree.String(hash)),
	), nil
}

// CanonicalTrace is Trace encoded as RFC 8785 canonical JSON.
func (r *Result) CanonicalTrace(scenarioName string) ([]byte, error) {
	trace, err := r.Trace(scenarioName)
	if err != nil {
		return nil, err
	}
	return tree.MarshalCanonical(trace)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := result.CanonicalTrace(scenarioName)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
