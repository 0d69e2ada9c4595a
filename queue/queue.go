// Package queue implements the unbounded FIFO that feeds the asynchronous drain goroutine.
package queue

import (
	"errors"
	"sync"
)

// ErrDestroyed is returned by Push after the queue was destroyed
var ErrDestroyed = errors.New("queue: destroyed")

// node is one intrusive list element
type node[T any] struct {
	prev *node[T]
	next *node[T]
	id   uint64 // best-effort sequence id
	data T
}

// Queue is a doubly-linked FIFO guarded by a single mutex.
// The lock is held only for the O(1) link mutation, never while the caller processes an item.
// Items are owned by the queue while linked; Pop hands ownership to the caller.
type Queue[T any] struct {
	mu        sync.Mutex
	head      *node[T]
	tail      *node[T]
	n         int
	nextID    uint64
	destroyed bool
	destroy   func(T)
}

// New creates an empty queue. destroy, if non-nil, is called on every item still queued at Destroy.
func New[T any](destroy func(T)) *Queue[T] {
	return &Queue[T]{destroy: destroy}
}

// Push appends item at the tail
func (q *Queue[T]) Push(item T) error {
	n := &node[T]{data: item}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.destroyed {
		return ErrDestroyed
	}

	n.id = q.nextID
	q.nextID++
	if q.tail == nil {
		q.head = n
		q.tail = n
	} else {
		n.prev = q.tail
		q.tail.next = n
		q.tail = n
	}
	q.n++
	return nil
}

// Pop removes and returns the head item. It never blocks; ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.head
	if n == nil {
		return item, false
	}

	q.head = n.next
	if q.head == nil {
		q.tail = nil
	} else {
		q.head.prev = nil
	}
	q.n--

	item = n.data
	n.next = nil
	return item, true
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Destroy drains the queue, passing every remaining item to the destructor, and rejects further pushes.
// The consumer must have stopped before Destroy is called.
func (q *Queue[T]) Destroy() {
	q.mu.Lock()
	q.destroyed = true
	q.mu.Unlock()

	for {
		item, ok := q.Pop()
		if !ok {
			return
		}
		if q.destroy != nil {
			q.destroy(item)
		}
	}
}
