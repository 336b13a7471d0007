package lotkeeper

import (
	"fmt"

	"github.com/google/uuid"
)

// saleNamespace is the UUID namespace for sale record identifiers. Identifiers
// are version-5 UUIDs over the record's defining fields, so the same backing
// store always reconciles to the same identifiers and records can be
// cross-referenced between the text, CSV, and JSON report outputs.
var saleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ewanmcc/lotkeeper/sale"))

// shortTermDays is the maximum holding period, in days, for a disposal to be
// a short-term gain. A holding of 366 days or more is long term.
const shortTermDays = 366

// SaleRecord is one realized disposal of shares against a single buy lot.
// A sell transaction spanning several buy lots produces one SaleRecord per
// consumed lot fragment, each with its own cost basis and holding period.
//
// A SaleRecord is immutable once the wash-sale pass completes. Net proceeds,
// gain, and the other derived values are always recomputed, never stored.
type SaleRecord struct {
	ID          string
	Brokerage   string
	Ticker      string
	SalePrice   Money // per share
	Amount      Quantity
	Acquired    Date
	Sold        Date
	CostBasis   Money
	Commission  Money // nonzero only on the first fragment of a sale
	Wash        bool
	DisWashLoss Money  // disallowed wash-sale loss, >= 0
	LotID       string // originating buy lot tag, "" when the lot is untagged
}

// newSaleRecord builds a SaleRecord with its deterministic identifier.
// fragment is the zero-based index of this record within its sale transaction.
func newSaleRecord(brokerage, ticker string, salePrice Money, amount Quantity, acquired, sold Date, costBasis, commission Money, lotID string, fragment int) *SaleRecord {
	name := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d", brokerage, ticker, acquired, sold, amount, salePrice.Decimal(), fragment)
	return &SaleRecord{
		ID:          uuid.NewSHA1(saleNamespace, []byte(name)).String(),
		Brokerage:   brokerage,
		Ticker:      ticker,
		SalePrice:   salePrice,
		Amount:      amount,
		Acquired:    acquired,
		Sold:        sold,
		CostBasis:   costBasis,
		Commission:  commission,
		DisWashLoss: USD(0),
		LotID:       lotID,
	}
}

// NetProceeds returns the proceeds of the sale minus its commission.
func (s *SaleRecord) NetProceeds() Money {
	return s.SalePrice.Mul(s.Amount).Sub(s.Commission)
}

// Gain returns the raw gain (positive) or loss (negative) for this sale,
// before any wash-sale adjustment. See AllowedLoss for the adjusted loss.
func (s *SaleRecord) Gain() Money {
	return s.NetProceeds().Sub(s.CostBasis)
}

// GainPerShare returns the raw gain or loss per disposed share.
func (s *SaleRecord) GainPerShare() Money {
	return s.Gain().Div(s.Amount)
}

// AllowedLoss returns the loss allowed after the wash-sale adjustment. The
// result is zero for a gain, the full (negative) loss for an ordinary loss,
// and the loss plus the disallowed amount for a washed loss.
func (s *SaleRecord) AllowedLoss() Money {
	gain := s.Gain()
	if s.Wash && gain.IsNegative() {
		return gain.Add(s.DisWashLoss)
	}
	if gain.IsPositive() {
		return USD(0)
	}
	return gain
}

// ShortTerm reports whether the holding period makes this a short-term sale.
func (s *SaleRecord) ShortTerm() bool {
	return s.Acquired.DaysBetween(s.Sold) < shortTermDays
}

// SaleFields lists the sale record columns in report order. It mirrors the
// layout of the values returned by Row.
func SaleFields() []string {
	return []string{
		"id",
		"brokerage",
		"ticker",
		"sale_price",
		"amount",
		"date_acquired",
		"date_sold",
		"cost_basis",
		"short_term",
		"wash",
		"comm",
		"dis_wash_loss",
		"net_proceeds",
		"gain",
		"gain_per_share",
		"allowed_loss",
		"lot_id",
	}
}

// Row returns the record's values as strings, in SaleFields order.
func (s *SaleRecord) Row() []string {
	return []string{
		s.ID,
		s.Brokerage,
		s.Ticker,
		s.SalePrice.Decimal().String(),
		s.Amount.String(),
		s.Acquired.String(),
		s.Sold.String(),
		s.CostBasis.Decimal().String(),
		fmt.Sprintf("%t", s.ShortTerm()),
		fmt.Sprintf("%t", s.Wash),
		s.Commission.Decimal().String(),
		s.DisWashLoss.Decimal().String(),
		s.NetProceeds().Decimal().String(),
		s.Gain().Decimal().String(),
		s.GainPerShare().Decimal().StringFixed(4),
		s.AllowedLoss().Decimal().String(),
		s.LotID,
	}
}
