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

type reportCmd struct {
	start       string
	end         string
	fetchQuotes bool
	outPrefix   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "consolidated sales and holdings report" }
func (*reportCmd) Usage() string {
	return `lk report [-s <start_date>] [-d <end_date>] [-fetch-quotes] [-o <prefix>]

  Renders the sales ledger and the current holdings as one report. With -o,
  also writes <prefix>_sales.csv, <prefix>_sales.json and
  <prefix>_holdings.json next to the terminal output.
`
}

func (p *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "The start date for the sales range.")
	f.StringVar(&p.end, "d", "", "The end date for the sales range.")
	f.BoolVar(&p.fetchQuotes, "fetch-quotes", false, "Fetch live quotes for the held tickers.")
	f.StringVar(&p.outPrefix, "o", "", "Also write report files with this path prefix.")
}

func (p *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to, status := parseRange(p.start, p.end)
	if status != subcommands.ExitSuccess {
		return status
	}

	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}

	sales := r.Sales()
	holdings := r.CurrentHoldings()
	var quotes map[string]lotkeeper.Money
	if p.fetchQuotes {
		quotes = fetchQuotes(ctx, holdings)
	}

	printMarkdown(renderer.SalesMarkdown(sales, from, to) + "\n" + renderer.HoldingsMarkdown(holdings, quotes))

	if p.outPrefix == "" {
		return subcommands.ExitSuccess
	}
	if err := writeReportFiles(p.outPrefix, sales, holdings, from, to); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeReportFiles(prefix string, sales map[string]map[string][]*lotkeeper.SaleRecord, holdings map[string]map[string][]*lotkeeper.Transaction, from, to lotkeeper.Date) error {
	write := func(name string, render func(f *os.File) error) error {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render(f); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", name)
		return nil
	}

	if err := write(prefix+"_sales.csv", func(f *os.File) error {
		return renderer.SalesCSV(f, sales, from, to)
	}); err != nil {
		return err
	}
	if err := write(prefix+"_sales.json", func(f *os.File) error {
		return renderer.SalesJSON(f, sales, from, to)
	}); err != nil {
		return err
	}
	return write(prefix+"_holdings.json", func(f *os.File) error {
		return renderer.HoldingsJSON(f, holdings)
	})
}
