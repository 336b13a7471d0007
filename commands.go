package lotkeeper

import (
	"fmt"
	"strings"
)

// Directives are corpus adjustment commands embedded in the transaction
// stream. They are written as "!NAME#arg1#arg2..." and rewrite, or change the
// interpretation of, the transaction history before reconciliation replays it.

// DirectiveSentinel marks a record as a directive rather than a transaction.
const DirectiveSentinel = "!"

// Directive is a parsed corpus adjustment command.
type Directive interface {
	// Name returns the directive's command word, e.g. "SPLIT".
	Name() string
}

// SplitCommand rescales every buy of Ticker dated on or before Date,
// multiplying the share amount and dividing the per-share price by Multiple.
// The cost basis of each affected lot is unchanged.
type SplitCommand struct {
	Ticker   string
	Multiple Quantity
	Date     Date
}

func (c *SplitCommand) Name() string { return "SPLIT" }

// WashGroupCommand declares a set of tickers that count as replacement
// securities for one another in wash-sale detection. Membership is symmetric.
type WashGroupCommand struct {
	tickers []string
}

func (c *WashGroupCommand) Name() string { return "WASHGROUP" }

// Matches returns the other members of the group when ticker is a member,
// or an empty list otherwise.
func (c *WashGroupCommand) Matches(ticker string) []string {
	var others []string
	member := false
	for _, t := range c.tickers {
		if t == ticker {
			member = true
		} else {
			others = append(others, t)
		}
	}
	if !member {
		return nil
	}
	return others
}

// LiquidateCommand models the global liquidation of a security: every open
// buy lot of Ticker, in every brokerage, is disposed at the payout price on
// the effective date.
type LiquidateCommand struct {
	Ticker         string
	PayoutPerShare Money
	Date           Date
}

func (c *LiquidateCommand) Name() string { return "LIQUIDATE" }

// supportedDirectives lists the recognized command words for diagnostics.
var supportedDirectives = []string{"SPLIT", "WASHGROUP", "LIQUIDATE"}

// ParseDirective parses a "!NAME#arg#arg..." directive string. An unknown
// command word or a malformed argument list is an error; the caller treats it
// as fatal to the whole load.
func ParseDirective(s string) (Directive, error) {
	if !strings.HasPrefix(s, DirectiveSentinel) {
		return nil, fmt.Errorf("directive %q does not start with %q", s, DirectiveSentinel)
	}
	parts := strings.Split(s[len(DirectiveSentinel):], "#")
	word, args := parts[0], parts[1:]

	switch word {
	case "SPLIT":
		// arg format: ticker#multiple#date
		if len(args) != 3 {
			return nil, configErrorf("invalid number of arguments for SPLIT: expected 3, got %d", len(args))
		}
		multiple, err := ParseQuantity(args[1])
		if err != nil {
			return nil, configErrorf("invalid SPLIT multiple %q: %v", args[1], err)
		}
		day, err := ParseDate(args[2])
		if err != nil {
			return nil, configErrorf("invalid SPLIT date %q: %v", args[2], err)
		}
		return &SplitCommand{Ticker: args[0], Multiple: multiple, Date: day}, nil

	case "WASHGROUP":
		if len(args) == 0 {
			return nil, configErrorf("WASHGROUP requires at least one ticker")
		}
		return &WashGroupCommand{tickers: args}, nil

	case "LIQUIDATE":
		// arg format: ticker#payout_per_share#date
		if len(args) != 3 {
			return nil, configErrorf("invalid number of arguments for LIQUIDATE: expected 3, got %d", len(args))
		}
		payout, err := ParseMoney(args[1])
		if err != nil {
			return nil, configErrorf("invalid LIQUIDATE payout %q: %v", args[1], err)
		}
		day, err := ParseDate(args[2])
		if err != nil {
			return nil, configErrorf("invalid LIQUIDATE date %q: %v", args[2], err)
		}
		return &LiquidateCommand{Ticker: args[0], PayoutPerShare: payout, Date: day}, nil

	default:
		return nil, fmt.Errorf("unsupported special command %q, supported commands are %s",
			word, strings.Join(supportedDirectives, ","))
	}
}
