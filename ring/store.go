// Package ring provides fixed-capacity slot storage and the single-producer/single-consumer
// circular channel built on top of it, plus a byte region variant for memory-mapped logging.
package ring

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when a store is requested with fewer than one slot
	ErrInvalidCapacity = errors.New("ring: capacity must be at least 1")
	// ErrSlotRange is returned for slot indexes outside the store
	ErrSlotRange = errors.New("ring: slot index out of range")
	// ErrNotAcquired is returned in strict mode when a cursor is signaled without a prior acquire
	ErrNotAcquired = errors.New("ring: cursor signaled without acquire")
	// ErrInvalidSlotSize is returned when a region slot cannot hold a sequence number and a terminator
	ErrInvalidSlotSize = errors.New("ring: slot size too small")
)

// Store is a fixed array of reusable slots. It owns no concurrency policy,
// only the storage and the index arithmetic.
type Store[T any] struct {
	slots []T
}

// NewStore allocates a store with the given number of zero-valued slots
func NewStore[T any](capacity int) (*Store[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Store[T]{slots: make([]T, capacity)}, nil
}

// newStoreFrom wraps pre-built slots without copying
func newStoreFrom[T any](slots []T) (*Store[T], error) {
	if len(slots) < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Store[T]{slots: slots}, nil
}

// Cap returns the number of slots
func (s *Store[T]) Cap() int {
	return len(s.slots)
}

// Slot returns a pointer to slot i, checked against the store bounds
func (s *Store[T]) Slot(i int) (*T, error) {
	if i < 0 || i >= len(s.slots) {
		return nil, fmt.Errorf("%w: %d (capacity %d)", ErrSlotRange, i, len(s.slots))
	}
	return &s.slots[i], nil
}

// Next returns the index following i, wrapping to the first slot after the last
func (s *Store[T]) Next(i int) int {
	if i >= len(s.slots)-1 {
		return 0
	}
	return i + 1
}

// at is the unchecked accessor used by cursors that are always in range
func (s *Store[T]) at(i int) *T {
	return &s.slots[i]
}
