package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ewanmcc/lotkeeper"
	"github.com/google/subcommands"
)

type undoCmd struct{}

func (*undoCmd) Name() string     { return "undo" }
func (*undoCmd) Synopsis() string { return "remove the most recent transaction from the store" }
func (*undoCmd) Usage() string {
	return `lk undo

  Removes the most recent transaction from the transaction store. Directives
  are left in place. The next command replays the shortened store, so the
  resulting state is identical to never having entered the transaction.
`
}

func (*undoCmd) SetFlags(f *flag.FlagSet) {}

func (*undoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := lotkeeper.RemoveLastTransaction(*storeFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Removed %s\n", tx)
	return subcommands.ExitSuccess
}
