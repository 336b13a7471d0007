package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ewanmcc/lotkeeper"
	"github.com/google/subcommands"
)

type buyCmd struct {
	brokerage  string
	date       string
	commission float64
	lotID      string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a buy transaction" }
func (*buyCmd) Usage() string {
	return `lk buy -b <brokerage> [-d <date>] [-c <commission>] [-lot <id>] <ticker> <amount> <price>

  Records the purchase of <amount> shares of <ticker> at <price> per share
  and appends it to the transaction store.

Usage Examples:
# Buy 100 shares of SPY at 400.00 through Schwab.
$ lk buy -b Schwab SPY 100 400

`
}

func (p *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.brokerage, "b", envDefault("LK_BROKERAGE", ""), "Brokerage holding the lot.")
	f.StringVar(&p.date, "d", "", "Transaction date (YYYY-MM-DD). Defaults to today.")
	f.Float64Var(&p.commission, "c", 0, "Commission paid on the purchase.")
	f.StringVar(&p.lotID, "lot", "", "Identifier for the new lot, referenced later by sell -lots.")
}

func (p *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ticker, amount, price, day, status := parseTradeArgs(f, p.date)
	if status != subcommands.ExitSuccess {
		return status
	}

	r, err := openReconciler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}

	var lotIDs []string
	if p.lotID != "" {
		lotIDs = []string{p.lotID}
	}
	tx, err := lotkeeper.NewTransaction(lotkeeper.KindBuy, p.brokerage, ticker, amount, price,
		lotkeeper.USD(p.commission), day, lotkeeper.USD(0), lotIDs, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	if err := r.BuyTransaction(tx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := r.AppendHistoryToStore(""); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Bought %s %s at %s on %s\n", amount, ticker, price, day)
	return subcommands.ExitSuccess
}

// parseTradeArgs reads the <ticker> <amount> <price> positional arguments
// shared by buy and sell, plus the date flag.
func parseTradeArgs(f *flag.FlagSet, date string) (string, lotkeeper.Quantity, lotkeeper.Money, lotkeeper.Date, subcommands.ExitStatus) {
	var zeroQ lotkeeper.Quantity
	var zeroM lotkeeper.Money
	var zeroD lotkeeper.Date

	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: expecting <ticker> <amount> <price> arguments.")
		return "", zeroQ, zeroM, zeroD, subcommands.ExitUsageError
	}
	ticker := f.Arg(0)

	amount, err := lotkeeper.ParseQuantity(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return "", zeroQ, zeroM, zeroD, subcommands.ExitUsageError
	}
	price, err := lotkeeper.ParseMoney(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
		return "", zeroQ, zeroM, zeroD, subcommands.ExitUsageError
	}

	day := lotkeeper.Today()
	if date != "" {
		if day, err = lotkeeper.ParseDate(date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return "", zeroQ, zeroM, zeroD, subcommands.ExitUsageError
		}
	}
	return ticker, amount, price, day, subcommands.ExitSuccess
}
