package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/seed"
)

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	Before string    `json:"before"`
	After  string    `json:"after"`
	Diff   diff.Diff `json:"diff"`
	Hash   string    `json:"hash"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <before-file> <after-file>",
		Short: "Show the structural diff between two state files",
		Long: `Load two state files and print every changed location, one entry per
line as "path: from -> to". Arrays are compared per index; a length change
adds a "<path>.length" entry.

Examples:
  statetree diff before.json after.json
  statetree diff before.yaml after.cue --format json`,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDiff(opts *RootOptions, beforeFile, afterFile string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	before, err := seed.Load(beforeFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load before state", err)
	}
	after, err := seed.Load(afterFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load after state", err)
	}

	d := diff.Compute(before, after)
	if out.JSON() {
		hash, err := d.Hash()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to hash diff", err)
		}
		return out.Respond(DiffResult{Before: beforeFile, After: afterFile, Diff: d, Hash: hash}, nil)
	}

	if d.Empty() {
		out.Printf("No changes.")
		return nil
	}
	for _, e := range d.Entries {
		out.Printf("%s", e.String())
	}
	return nil
}
