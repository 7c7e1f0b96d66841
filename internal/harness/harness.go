package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/statetree/internal/observer"
	"github.com/roach88/statetree/internal/store"
	"github.com/roach88/statetree/internal/testutil"
	"github.com/roach88/statetree/internal/transaction"
	"github.com/roach88/statetree/internal/tree"
)

// Run executes a scenario against a fresh store and returns the result.
//
// The store uses a deterministic time source and discards logs, so two runs
// of the same scenario produce identical results. extra options are applied
// after the harness defaults; the CLI uses them to attach a recorder.
//
// An error is returned only when the scenario cannot be executed (bad
// initial state, bad pattern, unbuildable mutation). Failed expectations
// and assertions are reported in Result.Errors.
func Run(scenario *Scenario, extra ...store.Option) (*Result, error) {
	initial, err := scenario.InitialState()
	if err != nil {
		return nil, err
	}

	clock := testutil.NewDeterministicClock()
	opts := []store.Option{
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		store.WithTimeSource(clock.Now),
		store.WithMetrics(false),
	}
	opts = append(opts, extra...)

	s := store.New(initial, opts...)
	if scenario.ComponentIndex != "" {
		if err := s.EnableComponentIndex(scenario.ComponentIndex); err != nil {
			return nil, fmt.Errorf("component index: %w", err)
		}
	}

	result := NewResult()
	step := 0
	for _, pattern := range scenario.Observe {
		_, err := s.Observe(pattern, func(newValue, oldValue tree.Value, ctx observer.Context) {
			result.Notifications = append(result.Notifications, Notification{
				Step:    step,
				Pattern: ctx.Pattern,
				Path:    ctx.Path,
				From:    oldValue,
				To:      newValue,
			})
		})
		if err != nil {
			return nil, err
		}
	}

	for i, st := range scenario.Steps {
		step = i
		muts, err := BuildMutations(st.Mutations)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		res := s.Dispatch(muts...)
		sr := StepResult{
			Index:       i,
			Name:        st.Name,
			Valid:       res.Valid,
			FailedIndex: -1,
			Diff:        res.Diff,
		}
		if res.Valid {
			sr.Seq = s.Seq()
		} else {
			sr.Error = res.Err.Error()
			if idx, _, ok := transaction.FailedMutation(res.Err); ok {
				sr.FailedIndex = idx
			}
		}
		result.Steps = append(result.Steps, sr)

		if res.Valid != st.Expected() {
			msg := fmt.Sprintf("step %d (%s): expected valid=%t, got valid=%t", i, stepLabel(st, i), st.Expected(), res.Valid)
			if !res.Valid {
				msg += ": " + res.Err.Error()
			}
			result.AddError(msg)
		}
	}

	result.FinalState = s.State()
	result.HistoryLength = len(s.History())
	result.entities = s.EntitiesWithComponent

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func stepLabel(st Step, i int) string {
	if st.Name != "" {
		return st.Name
	}
	return fmt.Sprintf("#%d", i)
}
