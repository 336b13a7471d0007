package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ewanmcc/lotkeeper"
	"github.com/ewanmcc/lotkeeper/renderer"
	"github.com/google/subcommands"
)

type salesCmd struct {
	start string
	end   string
}

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "list realized sales per brokerage" }
func (*salesCmd) Usage() string {
	return `lk sales [-s <start_date>] [-d <end_date>]

  Lists the realized sale records per brokerage, with gains, holding terms
  and wash-sale markers. The date range is closed on both ends; either bound
  may be omitted.
`
}

func (p *salesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "The start date for the range.")
	f.StringVar(&p.end, "d", "", "The end date for the range.")
}

func (p *salesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to, status := parseRange(p.start, p.end)
	if status != subcommands.ExitSuccess {
		return status
	}

	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SalesMarkdown(r.Sales(), from, to))
	return subcommands.ExitSuccess
}

// parseRange parses the optional start and end date flags and rejects a
// negative range.
func parseRange(start, end string) (lotkeeper.Date, lotkeeper.Date, subcommands.ExitStatus) {
	var from, to lotkeeper.Date
	var err error
	if start != "" {
		if from, err = lotkeeper.ParseDate(start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return from, to, subcommands.ExitUsageError
		}
	}
	if end != "" {
		if to, err = lotkeeper.ParseDate(end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return from, to, subcommands.ExitUsageError
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: end date %s is before start date %s\n", to, from)
		return from, to, subcommands.ExitUsageError
	}
	return from, to, subcommands.ExitSuccess
}
