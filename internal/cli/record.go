package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/harness"
	"github.com/roach88/statetree/internal/recording"
	"github.com/roach88/statetree/internal/store"
	"github.com/roach88/statetree/internal/tree"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
}

// RecordResult is the JSON payload of the record command.
type RecordResult struct {
	Session   string   `json:"session"`
	Scenario  string   `json:"scenario"`
	Steps     int      `json:"steps"`
	Committed int      `json:"committed"`
	LastSeq   int64    `json:"last_seq"`
	FinalHash string   `json:"final_hash"`
	Pass      bool     `json:"pass"`
	Errors    []string `json:"errors,omitempty"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <scenario-file>",
		Short: "Run a scenario and record its transactions to SQLite",
		Long: `Run a scenario file with a recorder attached. A new session stores the
initial state, every committed transaction (mutations and diff) and a
snapshot of the final state, so "statetree replay" can verify it later.

Exit codes:
  0 - Recorded and every step/assertion held
  1 - Recorded but the scenario failed
  2 - Command error (bad scenario, database not writable, etc.)

Examples:
  statetree record scenarios/inventory.yaml --db ./sessions.db`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRecord(opts *RecordOptions, file string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	initial, err := scenario.InitialState()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	rec, err := recording.Open(opts.Database, recording.WithLogger(slog.Default()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer rec.Close()

	session, err := rec.BeginSession(ctx, scenario.Name, initial)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to begin session", err)
	}
	out.VerboseLog("session %s", session)

	result, err := harness.Run(scenario, store.WithCommitHook(rec.Hook(ctx, session)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	res := RecordResult{
		Session:  session,
		Scenario: scenario.Name,
		Steps:    len(result.Steps),
		Pass:     result.Pass,
		Errors:   result.Errors,
	}
	for _, st := range result.Steps {
		if st.Valid {
			res.Committed++
			res.LastSeq = max(res.LastSeq, st.Seq)
		}
	}

	if err := rec.WriteSnapshot(ctx, session, res.LastSeq, result.FinalState); err != nil {
		return WrapExitError(ExitCommandError, "failed to write final snapshot", err)
	}
	if res.FinalHash, err = tree.Hash(result.FinalState); err != nil {
		return WrapExitError(ExitCommandError, "failed to hash final state", err)
	}

	if out.JSON() {
		var cliErr *CLIError
		if !res.Pass {
			cliErr = &CLIError{Code: "E_TEST_FAILED", Message: fmt.Sprintf("scenario %s failed", scenario.Name)}
		}
		if err := out.Respond(res, cliErr); err != nil {
			return err
		}
	} else {
		out.Printf("Recorded session %s (%s)", res.Session, res.Scenario)
		out.Printf("  %d of %d steps committed, last seq %d", res.Committed, res.Steps, res.LastSeq)
		out.Printf("  final hash %s", res.FinalHash)
		for _, e := range res.Errors {
			out.Printf("  %s", e)
		}
	}

	if !res.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}
