package ring

import (
	"sync/atomic"
)

// Option configures a Channel
type Option func(*channelOptions)

type channelOptions struct {
	strict bool
}

// WithStrictUsage makes cursor misuse visible: re-acquiring a held cursor fails and
// signaling a cursor that was not acquired returns ErrNotAcquired.
// Without it, misuse is silently ignored.
func WithStrictUsage() Option {
	return func(o *channelOptions) {
		o.strict = true
	}
}

// Channel wraps a Store with an acquire/release protocol for one producer and one consumer.
//
// The write cursor is only touched by the producer and the read cursor only by the consumer.
// Cursor advancement is not atomic; concurrent producers (or consumers) must serialize
// externally around each acquire/signal pair. Only the occupancy counter is atomic, and it
// is advisory bookkeeping updated after the cursor moves.
type Channel[T any] struct {
	store *Store[T]

	occupancy atomic.Int64
	rd        int
	wr        int

	rdHeld atomic.Bool
	wrHeld atomic.Bool

	strict bool
	faults atomic.Uint64 // recovered negative-occupancy observations
}

// NewChannel creates a channel over a fresh store of the given capacity
func NewChannel[T any](capacity int, opts ...Option) (*Channel[T], error) {
	store, err := NewStore[T](capacity)
	if err != nil {
		return nil, err
	}
	return NewChannelFromStore(store, opts...), nil
}

// NewChannelFromStore creates a channel over an existing store
func NewChannelFromStore[T any](store *Store[T], opts ...Option) *Channel[T] {
	var o channelOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Channel[T]{store: store, strict: o.strict}
}

// Cap returns the channel capacity
func (c *Channel[T]) Cap() int {
	return c.store.Cap()
}

// Len returns the current occupancy. A negative value is a consistency fault:
// it is clamped to zero, counted, and not treated as fatal.
func (c *Channel[T]) Len() int {
	n := c.occupancy.Load()
	if n < 0 {
		c.occupancy.CompareAndSwap(n, 0)
		c.faults.Add(1)
		return 0
	}
	return int(n)
}

// Faults returns how many negative occupancy readings were recovered
func (c *Channel[T]) Faults() uint64 {
	return c.faults.Load()
}

// AcquireWrite returns the slot under the write cursor without advancing it.
// Returns false when the channel is full.
func (c *Channel[T]) AcquireWrite() (*T, bool) {
	if c.Len() >= c.store.Cap() {
		return nil, false
	}
	if !c.wrHeld.CompareAndSwap(false, true) && c.strict {
		return nil, false
	}
	return c.store.at(c.wr), true
}

// SignalWritten advances the write cursor and then increments occupancy.
// Must follow exactly one successful AcquireWrite.
func (c *Channel[T]) SignalWritten() error {
	if !c.wrHeld.CompareAndSwap(true, false) {
		if c.strict {
			return ErrNotAcquired
		}
		return nil
	}
	c.wr = c.store.Next(c.wr)
	c.occupancy.Add(1)
	return nil
}

// AcquireRead returns the slot under the read cursor without advancing it.
// Returns false when the channel is empty.
func (c *Channel[T]) AcquireRead() (*T, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	if !c.rdHeld.CompareAndSwap(false, true) && c.strict {
		return nil, false
	}
	return c.store.at(c.rd), true
}

// SignalRead advances the read cursor and then decrements occupancy, floored at zero
func (c *Channel[T]) SignalRead() error {
	if !c.rdHeld.CompareAndSwap(true, false) {
		if c.strict {
			return ErrNotAcquired
		}
		return nil
	}
	c.rd = c.store.Next(c.rd)
	if n := c.occupancy.Add(-1); n < 0 {
		c.occupancy.CompareAndSwap(n, 0)
		c.faults.Add(1)
	}
	return nil
}

// Flush is an emergency reset: releases both cursors, zeroes occupancy and
// moves both cursors back to the first slot. Unread data is discarded.
// It must not race with a producer or consumer.
func (c *Channel[T]) Flush() {
	c.rdHeld.Store(false)
	c.wrHeld.Store(false)
	c.occupancy.Store(0)
	c.rd = 0
	c.wr = 0
}

// Cursors returns the current read and write slot indexes
func (c *Channel[T]) Cursors() (read, write int) {
	return c.rd, c.wr
}
