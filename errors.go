package lotkeeper

import "fmt"

// ConfigurationError reports an invalid transaction, directive, or lot
// selection. It is fatal to the operation that raised it.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// LookupError reports a sell against a (brokerage, ticker) pair that was
// never bought.
type LookupError struct {
	Brokerage string
	Ticker    string
}

func (e *LookupError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("no data for brokerage %q", e.Brokerage)
	}
	return fmt.Sprintf("ticker %s not found in brokerage %q", e.Ticker, e.Brokerage)
}

// OrderingError reports a transaction whose date precedes the newest lot
// already recorded for its (brokerage, ticker). The transaction is rejected
// without mutating any state; processing of later transactions continues.
type OrderingError struct {
	Brokerage string
	Ticker    string
	Date      Date
	Newest    Date
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("transaction for %s at %q dated %s is older than the newest recorded lot (%s)",
		e.Ticker, e.Brokerage, e.Date, e.Newest)
}

// InsufficientLotsError reports a sell that could not be fully matched
// against open lots. The sale has been rolled back in full: no lot was
// consumed and no sale record was committed.
type InsufficientLotsError struct {
	Brokerage string
	Ticker    string
	Requested Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient lots for sale of %s shares of %s at %q, sale cancelled",
		e.Requested, e.Ticker, e.Brokerage)
}
