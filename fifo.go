package lotkeeper

import "iter"

// lotSource is the queue surface the sell loop works against: either the
// physical chronological LotQueue or a ReorderQueue view over it.
type lotSource interface {
	PeekHead() *Transaction
	PeekTail() *Transaction
	PushBack(*Transaction)
	PushFront(*Transaction)
	PopFront() *Transaction
	Len() int
}

// LotQueue is an ordered double-ended sequence of open buy lots for one
// (brokerage, ticker) pair, oldest lot at the head.
type LotQueue struct {
	items []*Transaction
}

// NewLotQueue creates an empty lot queue.
func NewLotQueue() *LotQueue { return &LotQueue{} }

// PeekHead returns the lot at the head of the queue, or nil if empty.
func (q *LotQueue) PeekHead() *Transaction {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// PeekTail returns the lot at the tail of the queue, or nil if empty.
func (q *LotQueue) PeekTail() *Transaction {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[len(q.items)-1]
}

// PushBack appends a lot to the tail of the queue.
func (q *LotQueue) PushBack(t *Transaction) { q.items = append(q.items, t) }

// PushFront inserts a lot at the head of the queue. It is used only to undo
// the pops of a failed sale.
func (q *LotQueue) PushFront(t *Transaction) {
	q.items = append([]*Transaction{t}, q.items...)
}

// PopFront removes and returns the lot at the head of the queue.
// Popping an empty queue is a contract violation and panics.
func (q *LotQueue) PopFront() *Transaction {
	if len(q.items) == 0 {
		panic("lotkeeper: pop from an empty lot queue")
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head
}

// Len returns the number of open lots in the queue.
func (q *LotQueue) Len() int { return len(q.items) }

// All iterates lots from head (oldest) to tail.
func (q *LotQueue) All() iter.Seq[*Transaction] {
	return func(yield func(*Transaction) bool) {
		for _, t := range q.items {
			if !yield(t) {
				return
			}
		}
	}
}

// Total returns the sum of the un-disposed amounts of all queued lots.
func (q *LotQueue) Total() Quantity {
	total := Q(0)
	for _, t := range q.items {
		total = total.Add(t.Amount())
	}
	return total
}

// remove deletes the lot carrying the given sequence number, wherever it sits
// in the queue. It reports whether a lot was removed.
func (q *LotQueue) remove(seq int64) bool {
	for i, t := range q.items {
		if t.seq == seq {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
