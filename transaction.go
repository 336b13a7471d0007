package lotkeeper

import (
	"fmt"
	"strings"
)

// TxKind is a typed string identifying the kind of a transaction.
type TxKind string

const (
	KindBuy  TxKind = "buy"
	KindSell TxKind = "sell"
)

// ParseTxKind parses a string into a TxKind.
func ParseTxKind(s string) (TxKind, error) {
	switch TxKind(strings.ToLower(s)) {
	case KindBuy:
		return KindBuy, nil
	case KindSell:
		return KindSell, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q, must be %q or %q", s, KindBuy, KindSell)
	}
}

// Transaction is a single buy or sell instruction for a given brokerage and
// ticker symbol, keeping transactions for the same security in different
// brokerage accounts apart.
//
// A Transaction is immutable after construction except for three fields the
// engine maintains while reconciling: the remaining amount of a buy lot, the
// additional cost basis carried over from wash sales, and the disposed flag.
// Those change only through the package-private mutators below.
type Transaction struct {
	kind       TxKind
	brokerage  string
	ticker     string
	amount     Quantity // remaining un-disposed share count for buys
	price      Money    // per share
	commission Money
	date       Date
	addBasis   Money    // accumulated wash-sale carryover
	lotIDs     []string // at most one for a buy, any number for a sell
	sellAll    bool     // only valid for sells
	disposed   bool
	seq        int64 // engine-assigned lot sequence number, 0 until queued
}

// NewTransaction builds a validated Transaction. A zero date is quick-fixed
// to today, matching the behavior of interactively entered transactions.
func NewTransaction(kind TxKind, brokerage, ticker string, amount Quantity, price, commission Money, day Date, addBasis Money, lotIDs []string, sellAll bool) (*Transaction, error) {
	if kind != KindBuy && kind != KindSell {
		return nil, fmt.Errorf("invalid transaction type %q, must be %q or %q", kind, KindBuy, KindSell)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%s transaction amount must be positive, got %s", kind, amount)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%s transaction price must not be negative, got %s", kind, price)
	}
	if commission.IsNegative() {
		return nil, fmt.Errorf("%s transaction commission must not be negative, got %s", kind, commission)
	}
	if sellAll && kind != KindSell {
		return nil, fmt.Errorf("sell_all specified on a %s transaction", kind)
	}
	if day.IsZero() {
		day = Today()
	}

	// Strip empty lot id entries.
	ids := make([]string, 0, len(lotIDs))
	for _, id := range lotIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if kind == KindBuy && len(ids) > 1 {
		return nil, fmt.Errorf("invalid lot_ids %v: buy transactions cannot carry more than one lot id", ids)
	}

	return &Transaction{
		kind:       kind,
		brokerage:  brokerage,
		ticker:     ticker,
		amount:     amount,
		price:      price,
		commission: commission,
		date:       day,
		addBasis:   addBasis,
		lotIDs:     ids,
		sellAll:    sellAll,
	}, nil
}

func (t *Transaction) Kind() TxKind           { return t.kind }
func (t *Transaction) Brokerage() string      { return t.brokerage }
func (t *Transaction) Ticker() string         { return t.ticker }
func (t *Transaction) Amount() Quantity       { return t.amount }
func (t *Transaction) Price() Money           { return t.price }
func (t *Transaction) Commission() Money      { return t.commission }
func (t *Transaction) Date() Date             { return t.date }
func (t *Transaction) AdditionalBasis() Money { return t.addBasis }
func (t *Transaction) SellAll() bool          { return t.sellAll }
func (t *Transaction) Disposed() bool         { return t.disposed }

// LotIDs returns a copy of the transaction's lot identifiers.
func (t *Transaction) LotIDs() []string {
	ids := make([]string, len(t.lotIDs))
	copy(ids, t.lotIDs)
	return ids
}

// LotID returns the lot tag of a buy transaction, or "" if it has none.
func (t *Transaction) LotID() string {
	if t.kind == KindBuy && len(t.lotIDs) > 0 {
		return t.lotIDs[0]
	}
	return ""
}

// Engine-only mutators. Callers outside the reconciliation loop must treat a
// Transaction as read-only.

func (t *Transaction) consume(q Quantity)   { t.amount = t.amount.Sub(q) }
func (t *Transaction) setAmount(q Quantity) { t.amount = q }
func (t *Transaction) setDisposed(v bool)   { t.disposed = v }
func (t *Transaction) addToBasis(m Money)   { t.addBasis = t.addBasis.Add(m) }

// applySplit rescales the lot for a stock split, keeping amount*price constant.
func (t *Transaction) applySplit(multiple Quantity) {
	t.amount = t.amount.Mul(multiple)
	t.price = t.price.Div(multiple)
}

// clone returns a deep copy, used for the session history buffer so a later
// rebuild replays the transaction in its originally entered state.
func (t *Transaction) clone() *Transaction {
	c := *t
	c.lotIDs = make([]string, len(t.lotIDs))
	copy(c.lotIDs, t.lotIDs)
	return &c
}

// canonical returns the stable string form used for the store digest.
func (t *Transaction) canonical() string {
	return strings.Join([]string{
		string(t.kind), t.ticker, t.amount.String(), t.price.Decimal().String(),
		t.date.String(), t.commission.Decimal().String(), t.brokerage,
		t.addBasis.Decimal().String(), strings.Join(t.lotIDs, ":"),
	}, "")
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction tr_type=%s,ticker=%s,amount=%s,price=%s,date=%s,comm=%s,brokerage=%s,add_basis=%s,lot_ids=%s",
		t.kind, t.ticker, t.amount, t.price.Decimal(), t.date, t.commission.Decimal(), t.brokerage, t.addBasis.Decimal(), strings.Join(t.lotIDs, ":"))
}
