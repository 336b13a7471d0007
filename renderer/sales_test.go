package renderer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ewanmcc/lotkeeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLedger reconciles a small two-brokerage history and returns the engine.
func testLedger(t *testing.T) *lotkeeper.Reconciler {
	t.Helper()
	r, err := lotkeeper.NewReconciler("")
	require.NoError(t, err)

	buy := func(brokerage string, amount, price float64, day string) {
		require.NoError(t, r.Buy(brokerage, "SPY", lotkeeper.Q(amount), lotkeeper.USD(price), lotkeeper.MustParseDate(day), lotkeeper.USD(0)))
	}
	buy("Schwab", 100, 10, "2022-01-10")
	buy("Fidelity", 50, 12, "2022-02-10")

	_, err = r.Sell("Schwab", "SPY", lotkeeper.Q(40), lotkeeper.USD(20), lotkeeper.MustParseDate("2023-03-10"), lotkeeper.USD(0))
	require.NoError(t, err)
	return r
}

func TestSalesMarkdown(t *testing.T) {
	r := testLedger(t)
	var none lotkeeper.Date
	md := SalesMarkdown(r.Sales(), none, none)

	assert.Contains(t, md, "# Sales Report")
	assert.Contains(t, md, "## Schwab")
	assert.NotContains(t, md, "## Fidelity", "brokerage without sales should not render")
	assert.Contains(t, md, "2022-01-10")
	assert.Contains(t, md, "+$400.00")
	assert.Contains(t, md, "Net allowed gain")
}

func TestSalesMarkdownRange(t *testing.T) {
	r := testLedger(t)
	md := SalesMarkdown(r.Sales(), lotkeeper.MustParseDate("2024-01-01"), lotkeeper.Date{})
	assert.Contains(t, md, "No sales in range.")

	md = SalesMarkdown(r.Sales(), lotkeeper.MustParseDate("2023-03-10"), lotkeeper.MustParseDate("2023-03-10"))
	assert.Contains(t, md, "## Schwab", "the range is closed on both ends")
}

func TestSalesCSV(t *testing.T) {
	r := testLedger(t)
	var buf bytes.Buffer
	var none lotkeeper.Date
	require.NoError(t, SalesCSV(&buf, r.Sales(), none, none))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, lotkeeper.SaleFields(), rows[0])
	require.Len(t, rows[1], len(lotkeeper.SaleFields()))
	assert.Equal(t, "SPY", rows[1][2])
}

func TestSalesJSON(t *testing.T) {
	r := testLedger(t)
	var buf bytes.Buffer
	var none lotkeeper.Date
	require.NoError(t, SalesJSON(&buf, r.Sales(), none, none))

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "SPY", entries[0]["ticker"])
	assert.Equal(t, "800", entries[0]["net_proceeds"])
	assert.NotEmpty(t, entries[0]["id"])
}

func TestHoldingsMarkdown(t *testing.T) {
	r := testLedger(t)
	md := HoldingsMarkdown(r.CurrentHoldings(), nil)

	assert.Contains(t, md, "# Current Holdings")
	assert.Contains(t, md, "## Schwab")
	assert.Contains(t, md, "## Fidelity")
	assert.Contains(t, md, "| SPY | 60 |")
	assert.NotContains(t, md, "Last Price", "quote columns need quotes")
}

func TestHoldingsMarkdownWithQuotes(t *testing.T) {
	r := testLedger(t)
	quotes := map[string]lotkeeper.Money{"SPY": lotkeeper.USD(20)}
	md := HoldingsMarkdown(r.CurrentHoldings(), quotes)

	assert.Contains(t, md, "Last Price")
	// 60 remaining Schwab shares at 20 against a 10 basis.
	assert.Contains(t, md, "| SPY | 60 | $10.00 | 2022-01-10 |  | $20.00 | $1,200.00 | +$600.00 |")
}

func TestHoldingsJSON(t *testing.T) {
	r := testLedger(t)
	var buf bytes.Buffer
	require.NoError(t, HoldingsJSON(&buf, r.CurrentHoldings()))

	var entries []struct {
		Brokerage string `json:"brokerage"`
		Ticker    string `json:"ticker"`
		Amount    string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	// Brokerages are sorted in the output.
	assert.Equal(t, "Fidelity", entries[0].Brokerage)
	assert.Equal(t, "Schwab", entries[1].Brokerage)
	assert.Equal(t, "60", strings.Trim(entries[1].Amount, `"`))
}
