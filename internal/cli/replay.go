package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/recording"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string `json:"session"`
	Label         string `json:"label"`
	Records       int    `json:"records"`
	LastSeq       int64  `json:"last_seq"`
	Hash          string `json:"hash"`
	SnapshotSeq   int64  `json:"snapshot_seq"`
	SnapshotHash  string `json:"snapshot_hash"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sessions and verify determinism",
		Long: `Rebuild each recorded session by applying its diffs, in seq order, to the
initial snapshot. The state reached at the latest snapshot's seq must hash
to the stored snapshot hash.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed
  2 - Command error (database not found, unknown session, etc.)

Examples:
  statetree replay --db ./sessions.db
  statetree replay --db ./sessions.db --session 0190b7c2-...
  statetree replay --db ./sessions.db --format json`,
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay one session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd)

	rec, err := openRecorder(opts.Database)
	if err != nil {
		return err
	}
	defer rec.Close()

	var sessions []recording.Session
	if opts.Session != "" {
		s, err := rec.ReadSession(ctx, opts.Session)
		if errors.Is(err, recording.ErrSessionNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []recording.Session{s}
	} else {
		sessions, err = rec.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, s := range sessions {
		res, err := rec.Replay(ctx, s.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", s.ID), err)
		}
		out.VerboseLog("replayed %s: %d records", s.ID, res.Records)

		result.Sessions = append(result.Sessions, ReplaySessionResult{
			Session:       s.ID,
			Label:         s.Label,
			Records:       res.Records,
			LastSeq:       res.LastSeq,
			Hash:          res.Hash,
			SnapshotSeq:   res.SnapshotSeq,
			SnapshotHash:  res.SnapshotHash,
			Deterministic: res.Deterministic,
		})
		if !res.Deterministic {
			result.AllDeterministic = false
		}
	}

	if out.JSON() {
		return outputReplayJSON(out, result)
	}
	return outputReplayText(out, result)
}

// openRecorder opens an existing recording database. Reading commands never
// create one.
func openRecorder(path string) (*recording.Recorder, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	rec, err := recording.Open(path, recording.WithLogger(slog.Default()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return rec, nil
}

func outputReplayJSON(out *OutputFormatter, result ReplayResult) error {
	var cliErr *CLIError
	if !result.AllDeterministic {
		cliErr = &CLIError{
			Code:    "E_NOT_DETERMINISTIC",
			Message: "replay diverged from the recorded snapshot",
		}
	}
	if err := out.Respond(result, cliErr); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, cliErr.Message)
	}
	return nil
}

func outputReplayText(out *OutputFormatter, result ReplayResult) error {
	if result.TotalSessions == 0 {
		out.Printf("No sessions found in database.")
		return nil
	}

	for _, s := range result.Sessions {
		mark := "\u2713"
		if !s.Deterministic {
			mark = "\u2717"
		}
		out.Printf("%s %s (%s): %d records, last seq %d", mark, s.Session, s.Label, s.Records, s.LastSeq)
		if !s.Deterministic {
			out.Printf("  snapshot at seq %d has hash %s", s.SnapshotSeq, s.SnapshotHash)
		}
		out.VerboseLog("  final hash %s", s.Hash)
	}

	out.Printf("")
	if !result.AllDeterministic {
		out.Printf("\u2717 Replay diverged from the recorded snapshot")
		return NewExitError(ExitFailure, "replay diverged from the recorded snapshot")
	}
	out.Printf("\u2713 All %d session(s) replay deterministically", result.TotalSessions)
	return nil
}
