// FILE: processor.go
package plog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/plog/driver"
	"github.com/lixenwraith/plog/queue"
	"github.com/lixenwraith/plog/ring"
)

// transport carries built records from producers to the single drain goroutine
type transport interface {
	push(rec *driver.Record) bool
	pop() (*driver.Record, bool)
	len() int
	// destroy hands every remaining record to fn and rejects further pushes
	destroy(fn func(*driver.Record))
}

// queueTransport is the unbounded mutex-guarded linked queue
type queueTransport struct {
	q         *queue.Queue[*driver.Record]
	onDestroy func(*driver.Record)
}

func newQueueTransport() *queueTransport {
	t := &queueTransport{}
	t.q = queue.New(func(rec *driver.Record) {
		if t.onDestroy != nil {
			t.onDestroy(rec)
		}
	})
	return t
}

func (t *queueTransport) push(rec *driver.Record) bool {
	return t.q.Push(rec) == nil
}

func (t *queueTransport) pop() (*driver.Record, bool) {
	return t.q.Pop()
}

func (t *queueTransport) len() int {
	return t.q.Len()
}

func (t *queueTransport) destroy(fn func(*driver.Record)) {
	t.onDestroy = fn
	t.q.Destroy()
}

// ringTransport is the bounded circular channel. Producers serialize on mu
// since the channel admits a single writer; the drain goroutine is the single reader.
type ringTransport struct {
	mu     sync.Mutex
	ch     *ring.Channel[*driver.Record]
	closed bool
}

func newRingTransport(capacity int) (*ringTransport, error) {
	ch, err := ring.NewChannel[*driver.Record](capacity, ring.WithStrictUsage())
	if err != nil {
		return nil, err
	}
	return &ringTransport{ch: ch}, nil
}

func (t *ringTransport) push(rec *driver.Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	slot, ok := t.ch.AcquireWrite()
	if !ok {
		return false
	}
	*slot = rec
	return t.ch.SignalWritten() == nil
}

func (t *ringTransport) pop() (*driver.Record, bool) {
	slot, ok := t.ch.AcquireRead()
	if !ok {
		return nil, false
	}
	rec := *slot
	*slot = nil
	if err := t.ch.SignalRead(); err != nil {
		return nil, false
	}
	return rec, rec != nil
}

func (t *ringTransport) len() int {
	return t.ch.Len()
}

func (t *ringTransport) destroy(fn func(*driver.Record)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for {
		rec, ok := t.pop()
		if !ok {
			break
		}
		fn(rec)
	}
	t.ch.Flush()
}

// processor is one run of the drain goroutine
type processor struct {
	transport transport
	running   atomic.Bool
	done      chan struct{}
	poll      time.Duration
}

// newProcessor creates the transport selected by cfg
func (l *Logger) newProcessor(cfg *Config) (*processor, error) {
	var t transport
	switch cfg.AsyncTransport {
	case "ring":
		rt, err := newRingTransport(int(cfg.RingCapacity))
		if err != nil {
			return nil, fmtErrorf("failed to create ring transport: %w", err)
		}
		t = rt
	default:
		t = newQueueTransport()
	}

	p := &processor{
		transport: t,
		done:      make(chan struct{}),
		poll:      time.Duration(cfg.PollIntervalMs) * time.Millisecond,
	}
	p.running.Store(true)
	return p, nil
}

// processMessages is the drain loop. It polls the transport with a sleep between empty polls,
// and after the running flag is cleared performs one final full drain before exiting.
func (l *Logger) processMessages(p *processor) {
	l.state.ProcessorExited.Store(false)
	defer close(p.done)
	defer l.state.ProcessorExited.Store(true)

	for p.running.Load() {
		if l.drainAvailable(p) == 0 {
			time.Sleep(p.poll)
		}
	}
	l.drainAvailable(p)
}

// drainAvailable dispatches every record currently in the transport and returns how many it handled
func (l *Logger) drainAvailable(p *processor) int {
	n := 0
	for {
		rec, ok := p.transport.pop()
		if !ok {
			return n
		}
		l.dispatch(rec)
		l.state.Pending.Add(-1)
		n++
	}
}
