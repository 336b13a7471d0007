package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type sharesCmd struct {
	brokerage string
}

func (*sharesCmd) Name() string     { return "shares" }
func (*sharesCmd) Synopsis() string { return "show outstanding shares of a ticker" }
func (*sharesCmd) Usage() string {
	return `lk shares [-b <brokerage>] <ticker>

  Shows the total un-disposed share count of <ticker>, summed across all
  brokerages, or for one brokerage with -b.
`
}

func (p *sharesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.brokerage, "b", "", "Restrict the count to one brokerage.")
}

func (p *sharesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting a <ticker> argument.")
		return subcommands.ExitUsageError
	}
	ticker := f.Arg(0)

	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(r.SharesOutstanding(ticker, p.brokerage))
	return subcommands.ExitSuccess
}
