package lotkeeper

// ReorderQueue is a proxy over a LotQueue that presents a caller-chosen
// subset and ordering of its lots, so a sale can dispose of specific buy lots
// out of chronological order. Every mutation is mirrored into the base queue:
// pushes append to both, and popping the view's head removes the matching lot
// from wherever it sits in the base queue, keyed by its assigned lot sequence
// number. The physical queue therefore stays consistent for all other
// operations.
type ReorderQueue struct {
	base   *LotQueue
	ticker string // for diagnostics only
	view   []*Transaction
}

// NewReorderQueue builds a view over base containing exactly the lots whose
// ids appear in lotIDs, in that order. It fails with a ConfigurationError if
// any requested lot id is not found in the base queue.
func NewReorderQueue(base *LotQueue, lotIDs []string, ticker string) (*ReorderQueue, error) {
	q := &ReorderQueue{base: base, ticker: ticker}
	for _, id := range lotIDs {
		found := false
		for lot := range base.All() {
			if lot.LotID() == id {
				q.view = append(q.view, lot)
				found = true
				break
			}
		}
		if !found {
			return nil, configErrorf("unable to find lot id %q for ticker %s", id, ticker)
		}
	}
	return q, nil
}

// PeekHead returns the head of the reordered view, or nil if empty.
func (q *ReorderQueue) PeekHead() *Transaction {
	if len(q.view) == 0 {
		return nil
	}
	return q.view[0]
}

// PeekTail returns the tail of the reordered view, or nil if empty.
func (q *ReorderQueue) PeekTail() *Transaction {
	if len(q.view) == 0 {
		return nil
	}
	return q.view[len(q.view)-1]
}

// PushBack appends a lot to both the view and the base queue.
func (q *ReorderQueue) PushBack(t *Transaction) {
	q.base.PushBack(t)
	q.view = append(q.view, t)
}

// PushFront inserts a lot at the head of both the view and the base queue.
func (q *ReorderQueue) PushFront(t *Transaction) {
	q.base.PushFront(t)
	q.view = append([]*Transaction{t}, q.view...)
}

// PopFront removes the head of the view and the matching lot from the base
// queue. Popping an empty view is a contract violation and panics.
func (q *ReorderQueue) PopFront() *Transaction {
	if len(q.view) == 0 {
		panic("lotkeeper: pop from an empty reorder queue")
	}
	head := q.view[0]
	// The matching base entry may not be at the base queue's own head.
	q.base.remove(head.seq)
	q.view = q.view[1:]
	return head
}

// Len returns the number of lots in the view.
func (q *ReorderQueue) Len() int { return len(q.view) }
