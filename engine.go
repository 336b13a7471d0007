package lotkeeper

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"maps"
	"slices"
	"sort"
)

// washWindowDays is the half-width of the closed wash-sale window: a buy
// within 30 calendar days before or after a loss sale can trigger a wash.
const washWindowDays = 30

// Reconciler replays an ordered history of buy and sell transactions into
// realized sale records and open holdings. It owns one LotQueue per
// (brokerage, ticker) pair, the sales ledger, the per-ticker wash-sale
// carryover, and the session history buffer. It is not safe for concurrent
// use; every operation runs to completion before the next is accepted.
type Reconciler struct {
	storePath string

	lots   map[string]map[string]*LotQueue     // open buy lots by [brokerage][ticker]
	ledger map[string]map[string][]*SaleRecord // committed sales by [brokerage][ticker]

	// transactions retains the full ordered history for the lifetime of the
	// engine: wash-sale detection looks ahead to future buys, and undo
	// rebuilds from it.
	transactions []*Transaction
	history      []*Transaction // this session's transactions, not yet flushed

	splits       map[string][]*SplitCommand
	washGroups   []*WashGroupCommand
	liquidations []*LiquidateCommand

	// carryover tracks disallowed wash-sale losses awaiting consumption.
	// Wash sales cross brokerage boundaries, so it is keyed by ticker only.
	carryover map[string]Money

	nextSeq int64 // lot sequence numbers, assigned when a buy is queued
}

// NewReconciler creates an engine backed by the transaction store at
// storePath and replays the store. An empty storePath creates an empty
// engine; a missing store file is reported and yields an empty engine.
func NewReconciler(storePath string) (*Reconciler, error) {
	r := &Reconciler{storePath: storePath}
	r.reset()
	if storePath == "" {
		return r, nil
	}
	if err := r.Rebuild(""); err != nil {
		return nil, err
	}
	return r, nil
}

// reset clears every piece of engine state except the session history.
func (r *Reconciler) reset() {
	r.lots = make(map[string]map[string]*LotQueue)
	r.ledger = make(map[string]map[string][]*SaleRecord)
	r.transactions = nil
	r.splits = make(map[string][]*SplitCommand)
	r.washGroups = nil
	r.liquidations = nil
	r.carryover = make(map[string]Money)
	r.nextSeq = 0
}

// Buy performs a programmatic buy operation.
func (r *Reconciler) Buy(brokerage, ticker string, amount Quantity, price Money, day Date, commission Money) error {
	tx, err := NewTransaction(KindBuy, brokerage, ticker, amount, price, commission, day, USD(0), nil, false)
	if err != nil {
		return err
	}
	return r.BuyTransaction(tx)
}

// Sell performs a programmatic sell operation and returns the committed sale
// records, one per consumed buy-lot fragment.
func (r *Reconciler) Sell(brokerage, ticker string, amount Quantity, price Money, day Date, commission Money) ([]*SaleRecord, error) {
	tx, err := NewTransaction(KindSell, brokerage, ticker, amount, price, commission, day, USD(0), nil, false)
	if err != nil {
		return nil, err
	}
	return r.SellTransaction(tx)
}

// BuyTransaction adds a buy transaction into the lot queue for its
// (brokerage, ticker) pair. Any outstanding wash-sale carryover for the
// ticker is folded into the lot's additional basis and cleared.
func (r *Reconciler) BuyTransaction(tx *Transaction) error {
	return r.applyBuy(tx, true, true)
}

// SellTransaction attempts the sale described by tx against previously
// bought lots. On success the generated records are committed to the sales
// ledger and returned. On failure no state is mutated: a sale that cannot be
// fully matched is rolled back in full and reported as an
// InsufficientLotsError.
func (r *Reconciler) SellTransaction(tx *Transaction) ([]*SaleRecord, error) {
	return r.applySell(tx, true, true)
}

// applyBuy queues a buy lot. session records the transaction in the session
// history buffer; track appends it to the retained corpus (false during a
// rebuild replay, whose transactions are already in the corpus).
func (r *Reconciler) applyBuy(tx *Transaction, session, track bool) error {
	if tx.Brokerage() == "" {
		return configErrorf("invalid empty brokerage on buy of %s", tx.Ticker())
	}
	queue := r.queueFor(tx.Brokerage(), tx.Ticker())

	// Transactions must be replayed non-decreasing in date per pair.
	if tail := queue.PeekTail(); tail != nil && tx.Date().Before(tail.Date()) {
		return &OrderingError{Brokerage: tx.Brokerage(), Ticker: tx.Ticker(), Date: tx.Date(), Newest: tail.Date()}
	}

	// Consume any outstanding disallowed wash loss for this ticker.
	if carry, ok := r.carryover[tx.Ticker()]; ok && !carry.IsZero() {
		tx.addToBasis(carry)
		delete(r.carryover, tx.Ticker())
	}

	r.nextSeq++
	tx.seq = r.nextSeq
	queue.PushBack(tx)

	if track {
		r.transactions = append(r.transactions, tx)
	}
	if session {
		r.history = append(r.history, tx.clone())
	}
	return nil
}

// applySell runs the sale state machine over the lot queue (or a reordered
// view of it when the sale names specific lots). A sale spanning several buy
// lots produces one SaleRecord per consumed fragment, each with its own cost
// basis and holding period; the records are committed only when the whole
// sale succeeds.
func (r *Reconciler) applySell(tx *Transaction, session, track bool) ([]*SaleRecord, error) {
	byTicker, ok := r.lots[tx.Brokerage()]
	if !ok {
		return nil, &LookupError{Brokerage: tx.Brokerage()}
	}
	base, ok := byTicker[tx.Ticker()]
	if !ok {
		return nil, &LookupError{Brokerage: tx.Brokerage(), Ticker: tx.Ticker()}
	}

	if tail := base.PeekTail(); tail != nil && tx.Date().Before(tail.Date()) {
		return nil, &OrderingError{Brokerage: tx.Brokerage(), Ticker: tx.Ticker(), Date: tx.Date(), Newest: tail.Date()}
	}

	// Resolve a sell-all instruction to the pair's current total.
	if tx.SellAll() {
		tx.setAmount(base.Total())
	}
	if !tx.Amount().IsPositive() {
		return nil, &InsufficientLotsError{Brokerage: tx.Brokerage(), Ticker: tx.Ticker(), Requested: tx.Amount()}
	}

	// The working queue is either the chronological FIFO itself or a proxy
	// restricted to the lots the sale names, in the order it names them.
	var working lotSource = base
	if ids := tx.LotIDs(); len(ids) > 0 {
		reordered, err := NewReorderQueue(base, ids, tx.Ticker())
		if err != nil {
			return nil, err
		}
		working = reordered
	}

	var popped []*Transaction
	var poppedAmounts []Quantity
	var records []*SaleRecord
	remaining := tx.Amount()

	for remaining.IsPositive() {
		// Only the first fragment of a sale carries the sale's commission.
		addComm := len(records) == 0

		head := working.PeekHead()
		if head == nil {
			// Out of lots with shares still to dispose: restore every popped
			// lot to the front of the queue in original order and fail.
			// Nothing reaches the ledger or the wash carryover on this path.
			for i := len(popped) - 1; i >= 0; i-- {
				popped[i].setAmount(poppedAmounts[i])
				popped[i].setDisposed(false)
				working.PushFront(popped[i])
			}
			return nil, &InsufficientLotsError{Brokerage: tx.Brokerage(), Ticker: tx.Ticker(), Requested: tx.Amount()}
		}

		switch {
		case head.Amount().GreaterThan(remaining):
			// Partial consumption: the head stays queued with its amount reduced.
			records = append(records, r.newSale(tx, head, remaining, false, addComm, len(records)))
			head.consume(remaining)
			remaining = Q(0)

		case head.Amount().Equal(remaining):
			// The remainder exactly consumes the head: lot-completing fragment.
			head.setDisposed(true)
			head.setAmount(Q(0))
			records = append(records, r.newSale(tx, head, remaining, true, addComm, len(records)))
			popped = append(popped, working.PopFront())
			poppedAmounts = append(poppedAmounts, remaining)
			remaining = Q(0)

		default:
			// The head is smaller than the remainder: consume it entirely and
			// keep matching against the next lot.
			take := head.Amount()
			head.setDisposed(true)
			head.setAmount(Q(0))
			records = append(records, r.newSale(tx, head, take, true, addComm, len(records)))
			remaining = remaining.Sub(take)
			popped = append(popped, working.PopFront())
			poppedAmounts = append(poppedAmounts, take)
		}
	}

	// The sale succeeded: record the wash carryover of its washed fragments
	// and commit all generated records to the ledger. A failed sale must not
	// leave carryover behind, so the assignment waits until here.
	for _, rec := range records {
		if rec.Wash {
			r.carryover[tx.Ticker()] = rec.DisWashLoss
		}
	}
	byTickerSales, ok := r.ledger[tx.Brokerage()]
	if !ok {
		byTickerSales = make(map[string][]*SaleRecord)
		r.ledger[tx.Brokerage()] = byTickerSales
	}
	byTickerSales[tx.Ticker()] = append(byTickerSales[tx.Ticker()], records...)

	if track {
		r.transactions = append(r.transactions, tx)
	}
	if session {
		r.history = append(r.history, tx.clone())
	}
	return records, nil
}

// newSale builds the sale record for one fragment of a sale and runs
// wash-sale detection on it. lotCompleted marks a fragment that consumes the
// remainder of its buy lot, which folds the buy's own commission into the
// cost basis. addComm marks the first fragment, which carries the sale's
// commission. Detection only flags the record; the carryover is written by
// the caller once the whole sale has succeeded.
func (r *Reconciler) newSale(sell, buy *Transaction, amount Quantity, lotCompleted, addComm bool, fragment int) *SaleRecord {
	costBasis := buy.AdditionalBasis().Add(buy.Price().Mul(amount))
	if lotCompleted {
		costBasis = costBasis.Add(buy.Commission())
	}
	commission := USD(0)
	if addComm {
		commission = sell.Commission()
	}

	rec := newSaleRecord(sell.Brokerage(), sell.Ticker(), sell.Price(), amount,
		buy.Date(), sell.Date(), costBasis, commission, buy.LotID(), fragment)

	// A lot cannot constitute its own wash trigger.
	trigger := r.findWashTrigger(sell)
	if trigger != nil && trigger != buy && rec.Gain().IsNegative() {
		rec.Wash = true
		log.Printf("wash sale detected for %s sold %s, trigger buy of %s on %s",
			sell.Ticker(), sell.Date(), trigger.Ticker(), trigger.Date())

		// If the trigger buy is smaller than this fragment, only the bought
		// share count is washed, not the complete fragment.
		washed := amount.Min(trigger.Amount())
		rec.DisWashLoss = rec.GainPerShare().Mul(washed).Abs()
	}
	return rec
}

// findWashTrigger searches the retained history for a not-yet-disposed buy
// of the sale's ticker, or of any ticker wash-grouped with it, dated within
// the closed ±30-day window around the sale date. The first match in history
// order wins.
func (r *Reconciler) findWashTrigger(sell *Transaction) *Transaction {
	lo := sell.Date().Add(-washWindowDays)
	hi := sell.Date().Add(washWindowDays)

	matches := map[string]bool{sell.Ticker(): true}
	for _, wg := range r.washGroups {
		for _, t := range wg.Matches(sell.Ticker()) {
			matches[t] = true
		}
	}

	for _, tr := range r.transactions {
		if tr.Kind() != KindBuy || tr.Disposed() || !matches[tr.Ticker()] {
			continue
		}
		if tr.Date().Before(lo) || tr.Date().After(hi) {
			continue
		}
		return tr
	}
	return nil
}

// queueFor returns the lot queue for a pair, creating it on first use.
func (r *Reconciler) queueFor(brokerage, ticker string) *LotQueue {
	byTicker, ok := r.lots[brokerage]
	if !ok {
		byTicker = make(map[string]*LotQueue)
		r.lots[brokerage] = byTicker
	}
	queue, ok := byTicker[ticker]
	if !ok {
		queue = NewLotQueue()
		byTicker[ticker] = queue
	}
	return queue
}

// SharesOutstanding returns the total un-disposed share count for ticker at
// the given brokerage, or across all brokerages when brokerage is empty.
func (r *Reconciler) SharesOutstanding(ticker, brokerage string) Quantity {
	total := Q(0)
	if brokerage != "" {
		if byTicker, ok := r.lots[brokerage]; ok {
			if queue, ok := byTicker[ticker]; ok {
				total = total.Add(queue.Total())
			}
		}
		return total
	}
	for _, byTicker := range r.lots {
		if queue, ok := byTicker[ticker]; ok {
			total = total.Add(queue.Total())
		}
	}
	return total
}

// CurrentHoldings returns the open buy lots by brokerage and ticker, oldest
// lot first. The slices are copies; the lots themselves are shared and must
// be treated as read-only.
func (r *Reconciler) CurrentHoldings() map[string]map[string][]*Transaction {
	holdings := make(map[string]map[string][]*Transaction, len(r.lots))
	for brokerage, byTicker := range r.lots {
		holdings[brokerage] = make(map[string][]*Transaction, len(byTicker))
		for ticker, queue := range byTicker {
			holdings[brokerage][ticker] = slices.Collect(queue.All())
		}
	}
	return holdings
}

// Sales returns the committed sale records by brokerage and ticker, oldest
// sale first. The slices are copies; the records are shared and immutable.
func (r *Reconciler) Sales() map[string]map[string][]*SaleRecord {
	sales := make(map[string]map[string][]*SaleRecord, len(r.ledger))
	for brokerage, byTicker := range r.ledger {
		sales[brokerage] = make(map[string][]*SaleRecord, len(byTicker))
		for ticker, records := range byTicker {
			sales[brokerage][ticker] = slices.Clone(records)
		}
	}
	return sales
}

// History returns this session's transactions, in entry order.
func (r *Reconciler) History() []*Transaction {
	return slices.Clone(r.history)
}

// Undo discards the last session transaction and rebuilds the engine from
// the backing store plus the shortened session buffer, replaying through the
// same entry points as normal operation. The rebuilt state is identical to
// having never issued the undone transaction.
func (r *Reconciler) Undo() error {
	if len(r.history) == 0 {
		log.Printf("nothing to undo from this session")
		return nil
	}
	r.history = r.history[:len(r.history)-1]

	if err := r.Rebuild(""); err != nil {
		return err
	}
	for _, tx := range r.history {
		// Replay the session buffer without re-adding it to the history,
		// which would double-add on the next flush.
		replayed := tx.clone()
		var err error
		if replayed.Kind() == KindBuy {
			err = r.applyBuy(replayed, false, true)
		} else {
			_, err = r.applySell(replayed, false, true)
		}
		if err != nil {
			log.Printf("undo replay: %v", err)
		}
	}
	return nil
}

// Rebuild clears all lot queues and ledgers and replays the backing store
// from scratch, re-running corpus adjustments first. An empty path replays
// the engine's own store. The session history buffer is preserved.
func (r *Reconciler) Rebuild(path string) error {
	fname := path
	if fname == "" {
		fname = r.storePath
	}
	r.reset()
	if fname == "" {
		return nil
	}

	loaded, err := loadStore(fname)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("data file %s not found", fname)
		return nil
	}
	if err != nil {
		return err
	}

	for _, d := range loaded.directives {
		switch cmd := d.(type) {
		case *SplitCommand:
			r.splits[cmd.Ticker] = append(r.splits[cmd.Ticker], cmd)
		case *WashGroupCommand:
			r.washGroups = append(r.washGroups, cmd)
		case *LiquidateCommand:
			r.liquidations = append(r.liquidations, cmd)
		}
	}

	// The whole store is read before any replay: wash-sale analysis needs to
	// look at "future" transactions.
	r.transactions = loaded.transactions
	r.applySplits()
	log.Printf("digest of input transactions and commands: %s", r.digest(loaded.rawDirectives))

	for _, tx := range r.transactions {
		// Replayed transactions are not added to the session history, which
		// would re-write them on the next flush.
		var err error
		if tx.Kind() == KindBuy {
			err = r.applyBuy(tx, false, false)
		} else {
			_, err = r.applySell(tx, false, false)
		}
		if err != nil {
			// Ordering violations and lot shortfalls are per-transaction
			// failures: the transaction is skipped and replay continues.
			log.Printf("ERROR: %v", err)
		}
	}

	r.applyLiquidations()
	return nil
}

// applySplits rescales buy amounts and per-share prices for every split
// directive, ordered by effective date per ticker. A buy preceding several
// split dates is rescaled once per applicable split, one pass per split.
func (r *Reconciler) applySplits() {
	tickers := slices.Sorted(maps.Keys(r.splits))
	for _, ticker := range tickers {
		splits := r.splits[ticker]
		sort.SliceStable(splits, func(i, j int) bool { return splits[i].Date.Before(splits[j].Date) })
		for _, split := range splits {
			for _, tr := range r.transactions {
				if tr.Kind() == KindBuy && tr.Ticker() == ticker && !tr.Date().After(split.Date) {
					tr.applySplit(split.Multiple)
				}
			}
		}
	}
}

// applyLiquidations disposes every remaining open lot of each liquidated
// ticker, in every brokerage, at the payout price on the effective date.
func (r *Reconciler) applyLiquidations() {
	liquidations := slices.Clone(r.liquidations)
	sort.SliceStable(liquidations, func(i, j int) bool { return liquidations[i].Date.Before(liquidations[j].Date) })

	for _, lc := range liquidations {
		for _, brokerage := range slices.Sorted(maps.Keys(r.lots)) {
			queue, ok := r.lots[brokerage][lc.Ticker]
			if !ok || queue.Len() == 0 {
				continue
			}
			tx, err := NewTransaction(KindSell, brokerage, lc.Ticker, queue.Total(), lc.PayoutPerShare, USD(0), lc.Date, USD(0), nil, true)
			if err != nil {
				log.Printf("ERROR: liquidation of %s at %q: %v", lc.Ticker, brokerage, err)
				continue
			}
			if _, err := r.applySell(tx, false, false); err != nil {
				log.Printf("ERROR: liquidation of %s at %q: %v", lc.Ticker, brokerage, err)
				continue
			}
			log.Printf("liquidated %s at %q on %s", lc.Ticker, brokerage, lc.Date)
		}
	}
}

// digest hashes the canonical values of all loaded transactions and
// directives, so formatting-only edits to the store do not change it.
// It returns the last 8 hex digits.
func (r *Reconciler) digest(rawDirectives []string) string {
	h := sha256.New()
	for _, tr := range r.transactions {
		h.Write([]byte(tr.canonical()))
	}
	for _, raw := range rawDirectives {
		h.Write([]byte(raw))
	}
	sum := fmt.Sprintf("%x", h.Sum(nil))
	return sum[len(sum)-8:]
}

// AppendHistoryToStore appends this session's transactions to the backing
// store, or to a different file when path is non-empty, and clears the
// session buffer.
func (r *Reconciler) AppendHistoryToStore(path string) error {
	fname := path
	if fname == "" {
		fname = r.storePath
	}
	if fname == "" {
		return configErrorf("no backing store to flush the session history to")
	}
	if len(r.history) == 0 {
		return nil
	}
	log.Printf("writing %d session transactions to file %s", len(r.history), fname)
	if err := appendRecords(fname, r.history); err != nil {
		return err
	}
	r.history = nil
	return nil
}
