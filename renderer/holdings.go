package renderer

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/ewanmcc/lotkeeper"
)

// HoldingsMarkdown renders the open lots as one markdown table per
// brokerage, oldest lot first. When quotes holds a current price for a
// ticker, the table gains current value and unrealized gain columns.
func HoldingsMarkdown(holdings map[string]map[string][]*lotkeeper.Transaction, quotes map[string]lotkeeper.Money) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Current Holdings\n\n")

	withQuotes := len(quotes) > 0
	empty := true
	for _, brokerage := range slices.Sorted(maps.Keys(holdings)) {
		byTicker := holdings[brokerage]

		var rows [][]string
		for _, ticker := range slices.Sorted(maps.Keys(byTicker)) {
			for _, lot := range byTicker[ticker] {
				if !lot.Amount().IsPositive() {
					continue
				}
				row := []string{ticker, lot.Amount().String(), lot.Price().String(), lot.Date().String(), lot.LotID()}
				if withQuotes {
					if price, ok := quotes[ticker]; ok {
						value := price.Mul(lot.Amount())
						gain := value.Sub(lot.Price().Mul(lot.Amount()).Add(lot.AdditionalBasis()))
						row = append(row, price.String(), value.String(), gain.SignedString())
					} else {
						row = append(row, "", "", "")
					}
				}
				rows = append(rows, row)
			}
		}
		if len(rows) == 0 {
			continue
		}
		empty = false

		fmt.Fprintf(&b, "## %s\n\n", brokerage)
		if withQuotes {
			fmt.Fprintln(&b, "| Ticker | Amount | Unit Price | Acquired | Lot ID | Last Price | Value | Unrealized |")
			fmt.Fprintln(&b, "|:---|---:|---:|:---|:---|---:|---:|---:|")
		} else {
			fmt.Fprintln(&b, "| Ticker | Amount | Unit Price | Acquired | Lot ID |")
			fmt.Fprintln(&b, "|:---|---:|---:|:---|:---|")
		}
		for _, row := range rows {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
		}
		fmt.Fprintln(&b)
	}

	if empty {
		fmt.Fprint(&b, "No open lots.\n")
	}
	return b.String()
}

// holdingEntry is the JSON document shape of one open lot.
type holdingEntry struct {
	Brokerage string             `json:"brokerage"`
	Ticker    string             `json:"ticker"`
	Amount    lotkeeper.Quantity `json:"amount"`
	UnitPrice lotkeeper.Money    `json:"unit_price"`
	Acquired  lotkeeper.Date     `json:"acquired"`
	AddBasis  lotkeeper.Money    `json:"add_basis"`
	LotID     string             `json:"lot_id,omitempty"`
}

// HoldingsJSON writes the open lots as a JSON array, oldest lot first per
// brokerage and ticker.
func HoldingsJSON(w io.Writer, holdings map[string]map[string][]*lotkeeper.Transaction) error {
	var out []holdingEntry
	for _, brokerage := range slices.Sorted(maps.Keys(holdings)) {
		byTicker := holdings[brokerage]
		for _, ticker := range slices.Sorted(maps.Keys(byTicker)) {
			for _, lot := range byTicker[ticker] {
				if !lot.Amount().IsPositive() {
					continue
				}
				out = append(out, holdingEntry{
					Brokerage: brokerage,
					Ticker:    ticker,
					Amount:    lot.Amount(),
					UnitPrice: lot.Price(),
					Acquired:  lot.Date(),
					AddBasis:  lot.AdditionalBasis(),
					LotID:     lot.LotID(),
				})
			}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
