package store

import "github.com/roach88/statetree/internal/mutation"

// deferQueue is a FIFO of mutation lists waiting for the current
// notification to finish.
type deferQueue struct {
	items [][]mutation.Mutation
}

func (q *deferQueue) enqueue(muts []mutation.Mutation) {
	q.items = append(q.items, muts)
}

// dequeue removes and returns the oldest list.
func (q *deferQueue) dequeue() ([]mutation.Mutation, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	muts := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return muts, true
}

func (q *deferQueue) len() int {
	return len(q.items)
}
