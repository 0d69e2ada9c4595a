package driver

import (
	"sync"

	"github.com/lixenwraith/plog/ring"
)

// Memory keeps the most recent bodies in a fixed region of caller-owned memory
type Memory struct {
	mu     sync.Mutex
	region *ring.Region
}

// NewMemory splits mem into slotSize slots. A zero slotSize selects ring.DefaultSlotSize.
func NewMemory(mem []byte, slotSize int) (*Memory, error) {
	if slotSize <= 0 {
		slotSize = ring.DefaultSlotSize
	}
	r, err := ring.NewRegion(mem, slotSize)
	if err != nil {
		return nil, err
	}
	return &Memory{region: r}, nil
}

func (m *Memory) Name() string { return "memory" }

// Init wipes the region with the sentinel byte
func (m *Memory) Init() error {
	m.mu.Lock()
	m.region.Wipe()
	m.mu.Unlock()
	return nil
}

// Write stores the record body, overwriting the oldest slot when the region is full
func (m *Memory) Write(rec *Record) error {
	m.mu.Lock()
	m.region.Append(rec.Body)
	m.mu.Unlock()
	return nil
}

// Entries returns the written slots, oldest first
func (m *Memory) Entries() []ring.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.region.Entries()
}
