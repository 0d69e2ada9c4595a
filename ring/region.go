package ring

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

const (
	// SeqSize is the width of the big-endian sequence counter at the start of each slot
	SeqSize = 4
	// Sentinel marks bytes that were wiped and never written
	Sentinel byte = 0xFF
	// DefaultSlotSize is the slot width used by the memory driver
	DefaultSlotSize = 128
)

// Entry is one decoded region slot
type Entry struct {
	Index   int
	Seq     uint32
	Text    string
	Written bool
}

// Region is a bounded span of externally reserved memory split into fixed-width slots.
// All access is checked against the span; nothing is allocated outside it.
// Append treats the region as a persistent wrap-around store that overwrites the oldest slot.
type Region struct {
	mem      []byte
	slotSize int
	store    *Store[[]byte]
	next     int
	seq      uint32
}

// NewRegion splits mem into slots of slotSize bytes. Trailing bytes that do not fill a slot are unused.
func NewRegion(mem []byte, slotSize int) (*Region, error) {
	if slotSize < SeqSize+1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlotSize, slotSize)
	}
	n := len(mem) / slotSize
	views := make([][]byte, n)
	for i := range views {
		start := i * slotSize
		views[i] = mem[start : start+slotSize : start+slotSize]
	}
	store, err := newStoreFrom(views)
	if err != nil {
		return nil, fmt.Errorf("region of %d bytes cannot hold a %d byte slot: %w", len(mem), slotSize, err)
	}
	return &Region{mem: mem, slotSize: slotSize, store: store}, nil
}

// Slots returns the number of slots in the region
func (r *Region) Slots() int {
	return r.store.Cap()
}

// SlotSize returns the width of each slot in bytes
func (r *Region) SlotSize() int {
	return r.slotSize
}

// Size returns the usable size of the region in bytes
func (r *Region) Size() int {
	return r.store.Cap() * r.slotSize
}

// Wipe fills the whole span with the sentinel pattern and resets the write position and sequence
func (r *Region) Wipe() {
	for i := range r.mem {
		r.mem[i] = Sentinel
	}
	r.next = 0
	r.seq = 0
}

// Append stores text in the next slot, overwriting the oldest one once the region is full.
// Text longer than the slot is truncated. Returns the sequence number written.
func (r *Region) Append(text string) uint32 {
	seq := r.seq
	EncodeSlot(*r.store.at(r.next), seq, text)
	r.next = r.store.Next(r.next)
	r.seq++
	return seq
}

// Slot decodes slot i
func (r *Region) Slot(i int) (Entry, error) {
	view, err := r.store.Slot(i)
	if err != nil {
		return Entry{}, err
	}
	e := DecodeSlot(*view)
	e.Index = i
	return e, nil
}

// Entries returns every written slot ordered by sequence number
func (r *Region) Entries() []Entry {
	var out []Entry
	for i := 0; i < r.store.Cap(); i++ {
		e := DecodeSlot(*r.store.at(i))
		if !e.Written {
			continue
		}
		e.Index = i
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Seq < out[b].Seq })
	return out
}

// Channel exposes the region slots through the acquire/release protocol.
// Producers fill acquired slots with EncodeSlot and consumers read them with DecodeSlot.
func (r *Region) Channel(opts ...Option) *Channel[[]byte] {
	return NewChannelFromStore(r.store, opts...)
}

// EncodeSlot writes the big-endian sequence followed by NUL-terminated text into slot
func EncodeSlot(slot []byte, seq uint32, text string) {
	binary.BigEndian.PutUint32(slot, seq)
	body := slot[SeqSize:]
	n := copy(body[:len(body)-1], text)
	body[n] = 0
}

// DecodeSlot reads a slot written by EncodeSlot. A slot still holding the sentinel
// in its sequence and first text byte was never written.
func DecodeSlot(slot []byte) Entry {
	if isSentinel(slot[:SeqSize+1]) {
		return Entry{}
	}
	body := slot[SeqSize:]
	if i := bytes.IndexByte(body, 0); i >= 0 {
		body = body[:i]
	}
	return Entry{
		Seq:     binary.BigEndian.Uint32(slot),
		Text:    string(body),
		Written: true,
	}
}

func isSentinel(b []byte) bool {
	for _, c := range b {
		if c != Sentinel {
			return false
		}
	}
	return true
}
