// Package lotkeeper reconciles security buy and sell transactions into
// realized sale records and open tax lots.
//
// The central type is Reconciler. It maintains one queue of open buy lots
// per (brokerage, ticker) pair and matches each sale against the queue
// oldest lot first, or against explicitly named lots in a caller-chosen
// order. A sale spanning several lots yields one SaleRecord per consumed
// fragment, each with its own acquisition date, cost basis and holding
// period. Sales at a loss are checked for wash sales against every
// not-yet-disposed buy of the same ticker (or a wash-grouped ticker) within
// 30 days of the sale; disallowed losses carry into the basis of the next
// purchase of the ticker.
//
// State is rebuilt by replaying a transaction store, a plain JSON-lines or
// CSV file that may also carry corpus directives: stock splits, wash groups
// and liquidations. Replay is deterministic, so the store file is the only
// durable state.
package lotkeeper
