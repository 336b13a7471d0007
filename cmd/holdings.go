package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ewanmcc/lotkeeper"
	"github.com/ewanmcc/lotkeeper/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	fetchQuotes bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list the open lots per brokerage" }
func (*holdingsCmd) Usage() string {
	return `lk holdings [-fetch-quotes]

  Lists the open lots per brokerage and ticker, oldest first. With
  -fetch-quotes, adds current price, value and unrealized gain columns from
  live quotes; quote failures degrade to the plain report.
`
}

func (p *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.fetchQuotes, "fetch-quotes", false, "Fetch live quotes for the held tickers.")
}

func (p *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}

	holdings := r.CurrentHoldings()
	var quotes map[string]lotkeeper.Money
	if p.fetchQuotes {
		quotes = fetchQuotes(ctx, holdings)
	}
	printMarkdown(renderer.HoldingsMarkdown(holdings, quotes))
	return subcommands.ExitSuccess
}

// fetchQuotes fetches a live price for every held ticker. Tickers whose
// quote fails are simply absent from the result.
func fetchQuotes(ctx context.Context, holdings map[string]map[string][]*lotkeeper.Transaction) map[string]lotkeeper.Money {
	provider := lotkeeper.NewQuoteProvider()
	quotes := make(map[string]lotkeeper.Money)
	for _, byTicker := range holdings {
		for ticker := range byTicker {
			if _, ok := quotes[ticker]; ok {
				continue
			}
			price, err := provider.LastPrice(ctx, ticker)
			if err != nil {
				log.Printf("warning: %v", err)
				continue
			}
			quotes[ticker] = price
		}
	}
	return quotes
}
