package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ewanmcc/lotkeeper"
	"github.com/google/subcommands"
)

type sellCmd struct {
	brokerage  string
	date       string
	commission float64
	lots       string
	all        bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale against previously bought lots" }
func (*sellCmd) Usage() string {
	return `lk sell -b <brokerage> [-d <date>] [-c <commission>] [-lots <id:id>] <ticker> <amount> <price>
lk sell -b <brokerage> -all [-d <date>] [-c <commission>] <ticker> <price>

  Matches the sale against open lots, oldest first, reports the resulting
  sale records and appends the transaction to the store. With -lots, the
  named lots are consumed first, in the order given. With -all, every open
  share of the pair is sold.

Usage Examples:
# Sell 50 shares of SPY at 420.00.
$ lk sell -b Schwab SPY 50 420

# Sell the whole position, consuming a chosen lot first.
$ lk sell -b Schwab -lots jan-lot -all SPY 420

`
}

func (p *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.brokerage, "b", envDefault("LK_BROKERAGE", ""), "Brokerage holding the lots.")
	f.StringVar(&p.date, "d", "", "Transaction date (YYYY-MM-DD). Defaults to today.")
	f.Float64Var(&p.commission, "c", 0, "Commission paid on the sale.")
	f.StringVar(&p.lots, "lots", "", "Colon-delimited lot ids to consume first, in order.")
	f.BoolVar(&p.all, "all", false, "Sell every open share of the pair.")
}

func (p *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var ticker string
	var amount lotkeeper.Quantity
	var price lotkeeper.Money
	var day lotkeeper.Date
	var err error

	if p.all {
		if f.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "Error: with -all, expecting <ticker> <price> arguments.")
			return subcommands.ExitUsageError
		}
		ticker = f.Arg(0)
		// The amount is resolved against the queue at sale time.
		amount = lotkeeper.Q(1)
		if price, err = lotkeeper.ParseMoney(f.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
			return subcommands.ExitUsageError
		}
		day = lotkeeper.Today()
		if p.date != "" {
			if day, err = lotkeeper.ParseDate(p.date); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
	} else {
		var status subcommands.ExitStatus
		ticker, amount, price, day, status = parseTradeArgs(f, p.date)
		if status != subcommands.ExitSuccess {
			return status
		}
	}

	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}

	var lotIDs []string
	if p.lots != "" {
		lotIDs = strings.Split(p.lots, ":")
	}
	tx, err := lotkeeper.NewTransaction(lotkeeper.KindSell, p.brokerage, ticker, amount, price,
		lotkeeper.USD(p.commission), day, lotkeeper.USD(0), lotIDs, p.all)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	records, err := r.SellTransaction(tx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := r.AppendHistoryToStore(""); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sold %s %s at %s on %s\n\n", tx.Amount(), ticker, price, day)
	fmt.Fprintln(&b, "| Amount | Acquired | Cost Basis | Gain | Term | Wash |")
	fmt.Fprintln(&b, "|---:|:---|---:|---:|:---|:---|")
	for _, rec := range records {
		term := "long"
		if rec.ShortTerm() {
			term = "short"
		}
		wash := ""
		if rec.Wash {
			wash = fmt.Sprintf("yes (%s disallowed)", rec.DisWashLoss)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			rec.Amount, rec.Acquired, rec.CostBasis, rec.Gain().SignedString(), term, wash)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
