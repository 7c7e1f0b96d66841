// Command statetree runs scenario files against the state store, queries and
// diffs state files, and records and replays store sessions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/statetree/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
