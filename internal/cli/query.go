package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/query"
	"github.com/roach88/statetree/internal/seed"
	"github.com/roach88/statetree/internal/tree"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Where []string // key=value partial-match criteria
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Path   string       `json:"path"`
	Where  []string     `json:"where,omitempty"`
	Values []tree.Value `json:"values"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <state-file> <path>",
		Short: "Read values from a state file",
		Long: `Load a state file (.json, .yaml, .yml or .cue) and read the values at a
path. Paths use dot segments, numeric array indices and "*" wildcards.

Without --where the value at the path is printed. With --where the path
must resolve to a collection; elements are kept when every key=value pair
matches. Values are parsed as JSON when possible, otherwise taken as
strings.

Exit codes:
  0 - At least one value found
  1 - Nothing at the path, or no element matched
  2 - Command error (unreadable file, invalid path, etc.)

Examples:
  statetree query world.yaml player.hp
  statetree query world.yaml "party.*.name"
  statetree query world.yaml inventory --where kind=potion --where count=2`,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "key=value criteria (repeatable)")

	return cmd
}

func runQuery(opts *QueryOptions, file, pattern string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	state, err := seed.Load(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load state", err)
	}

	result := QueryResult{Path: pattern, Where: opts.Where}
	if len(opts.Where) == 0 {
		v, err := query.Get(state, pattern)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid path", err)
		}
		result.Values = []tree.Value{}
		if v != nil {
			result.Values = append(result.Values, v)
		}
	} else {
		fields, err := parseWhere(opts.Where)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --where", err)
		}
		result.Values, err = query.Query(state, pattern, query.Match(fields))
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid path", err)
		}
	}
	out.VerboseLog("%d value(s) at %s", len(result.Values), pattern)

	if out.JSON() {
		var cliErr *CLIError
		if len(result.Values) == 0 {
			cliErr = &CLIError{Code: "E_NO_MATCH", Message: fmt.Sprintf("no value at %s", pattern)}
		}
		if err := out.Respond(result, cliErr); err != nil {
			return err
		}
	} else {
		for _, v := range result.Values {
			out.Printf("%s", renderValue(v))
		}
	}

	if len(result.Values) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no value at %s", pattern))
	}
	return nil
}

// parseWhere turns key=value pairs into match fields.
func parseWhere(pairs []string) (query.Fields, error) {
	fields := make(query.Fields, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q: expected key=value", pair)
		}
		v, err := tree.Parse([]byte(raw))
		if err != nil {
			v = tree.String(raw)
		}
		fields[key] = v
	}
	return fields, nil
}
