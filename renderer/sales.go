// Package renderer turns reconciliation results into markdown reports for
// the terminal and into CSV/JSON documents for files.
package renderer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/ewanmcc/lotkeeper"
)

// inRange reports whether a sale date falls in the closed [from, to] range.
// A zero bound is unbounded on that side.
func inRange(d, from, to lotkeeper.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// flattenSales orders records by brokerage then ticker, keeping each pair's
// own oldest-first order, and drops records outside the date range.
func flattenSales(sales map[string]map[string][]*lotkeeper.SaleRecord, from, to lotkeeper.Date) []*lotkeeper.SaleRecord {
	var flat []*lotkeeper.SaleRecord
	for _, brokerage := range slices.Sorted(maps.Keys(sales)) {
		byTicker := sales[brokerage]
		for _, ticker := range slices.Sorted(maps.Keys(byTicker)) {
			for _, rec := range byTicker[ticker] {
				if inRange(rec.Sold, from, to) {
					flat = append(flat, rec)
				}
			}
		}
	}
	return flat
}

// SalesMarkdown renders the sales ledger as one markdown table per
// brokerage, with a net gain total per brokerage and overall.
func SalesMarkdown(sales map[string]map[string][]*lotkeeper.SaleRecord, from, to lotkeeper.Date) string {
	var b strings.Builder

	switch {
	case !from.IsZero() && !to.IsZero():
		fmt.Fprintf(&b, "# Sales Report from %s to %s\n\n", from, to)
	case !from.IsZero():
		fmt.Fprintf(&b, "# Sales Report from %s\n\n", from)
	case !to.IsZero():
		fmt.Fprintf(&b, "# Sales Report until %s\n\n", to)
	default:
		fmt.Fprint(&b, "# Sales Report\n\n")
	}

	total := lotkeeper.USD(0)
	empty := true
	for _, brokerage := range slices.Sorted(maps.Keys(sales)) {
		flat := flattenSales(map[string]map[string][]*lotkeeper.SaleRecord{brokerage: sales[brokerage]}, from, to)
		if len(flat) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "## %s\n\n", brokerage)
		fmt.Fprintln(&b, "| Ticker | Amount | Acquired | Sold | Sale Price | Cost Basis | Gain | Allowed Loss | Term | Wash |")
		fmt.Fprintln(&b, "|:---|---:|:---|:---|---:|---:|---:|---:|:---|:---|")

		subtotal := lotkeeper.USD(0)
		for _, rec := range flat {
			term := "long"
			if rec.ShortTerm() {
				term = "short"
			}
			wash := ""
			if rec.Wash {
				wash = fmt.Sprintf("yes (%s disallowed)", rec.DisWashLoss)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				rec.Ticker, rec.Amount, rec.Acquired, rec.Sold,
				rec.SalePrice, rec.CostBasis,
				rec.Gain().SignedString(), rec.AllowedLoss().SignedString(),
				term, wash,
			)
			// DisWashLoss is zero unless the fragment is a washed loss, so
			// this sums the wash-adjusted gain.
			subtotal = subtotal.Add(rec.Gain()).Add(rec.DisWashLoss)
		}
		fmt.Fprintf(&b, "| **Total** | | | | | | **%s** | | | |\n\n", subtotal.SignedString())
		total = total.Add(subtotal)
	}

	if empty {
		fmt.Fprint(&b, "No sales in range.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Net allowed gain: %s\n", total.SignedString())
	return b.String()
}

// SalesCSV writes the sales ledger as CSV, one row per sale record.
func SalesCSV(w io.Writer, sales map[string]map[string][]*lotkeeper.SaleRecord, from, to lotkeeper.Date) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lotkeeper.SaleFields()); err != nil {
		return err
	}
	for _, rec := range flattenSales(sales, from, to) {
		if err := cw.Write(rec.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SalesJSON writes the sales ledger as a JSON array of field/value objects,
// using the same columns as the CSV output.
func SalesJSON(w io.Writer, sales map[string]map[string][]*lotkeeper.SaleRecord, from, to lotkeeper.Date) error {
	fields := lotkeeper.SaleFields()
	var out []map[string]string
	for _, rec := range flattenSales(sales, from, to) {
		row := rec.Row()
		entry := make(map[string]string, len(fields))
		for i, f := range fields {
			entry[f] = row[i]
		}
		out = append(out, entry)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
