package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/recording"
	"github.com/roach88/statetree/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Session recording.Session `json:"session"`
	Records []store.Record    `json:"records"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the transaction timeline of a recorded session",
		Long: `Print every committed transaction of a session in seq order: its
timestamp, the mutations it applied and the diff it produced.

Examples:
  statetree history --db ./sessions.db --session 0190b7c2-...
  statetree history --db ./sessions.db --session 0190b7c2-... --format json`,
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := newFormatter(opts.RootOptions, cmd)

	rec, err := openRecorder(opts.Database)
	if err != nil {
		return err
	}
	defer rec.Close()

	session, err := rec.ReadSession(ctx, opts.Session)
	if errors.Is(err, recording.ErrSessionNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	records, err := rec.ReadRecords(ctx, session.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}

	if out.JSON() {
		return out.Respond(HistoryResult{Session: session, Records: records}, nil)
	}

	out.Printf("Session %s (%s), created %s", session.ID, session.Label, session.CreatedAt.Format(time.RFC3339))
	if len(records) == 0 {
		out.Printf("No transactions recorded.")
		return nil
	}
	for _, r := range records {
		out.Printf("")
		out.Printf("#%d  %s", r.Seq, r.Timestamp.Format(time.RFC3339Nano))
		for _, m := range r.Mutations {
			out.Printf("  %s", m.Description)
		}
		for _, e := range r.Diff.Entries {
			out.Printf("    %s", e.String())
		}
	}
	return nil
}
