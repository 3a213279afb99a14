package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/persistence"
)

// MemoryLog is the in-memory event log used with the in-memory backend.
//
// Appends take effect immediately (the in-memory backend's transactions
// are no-ops). Blocked readers are woken through a broadcast channel that
// is replaced on every append, so concurrent readers never miss a wakeup.
type MemoryLog struct {
	mu      sync.Mutex
	records []Record
	wake    chan struct{}
	ids     IDGenerator
}

// MemoryLogOption configures a MemoryLog.
type MemoryLogOption func(*MemoryLog)

// WithMemoryIDGenerator overrides the record ID generator.
// Tests use a fixed-sequence generator for deterministic traces.
func WithMemoryIDGenerator(g IDGenerator) MemoryLogOption {
	return func(l *MemoryLog) {
		l.ids = g
	}
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog(opts ...MemoryLogOption) *MemoryLog {
	l := &MemoryLog{
		wake: make(chan struct{}),
		ids:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append implements Writer.
func (l *MemoryLog) Append(tx persistence.Tx, details []event.Details) error {
	if !persistence.IsMemoryTx(tx) {
		return fmt.Errorf("memory log: transaction is not a memory transaction (got %T)", tx)
	}
	if len(details) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range details {
		l.records = append(l.records, Record{
			Offset:  Offset(len(l.records) + 1),
			ID:      l.ids.Generate(),
			Details: d,
		})
	}

	// Broadcast: wake every blocked reader by closing the current wake
	// channel and installing a fresh one.
	close(l.wake)
	l.wake = make(chan struct{})

	return nil
}

// Read implements Reader.
func (l *MemoryLog) Read(after Offset, max int, timeout time.Duration) ([]Record, error) {
	deadline := time.Now().Add(timeout)

	for {
		recs, wake := l.readAvailable(after, max)
		if len(recs) > 0 {
			return recs, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return []Record{}, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			return []Record{}, nil
		}
	}
}

// readAvailable returns matching records and, if there are none, the wake
// channel to wait on. The channel is captured under the same lock as the
// read so an append between unlock and wait still wakes the caller.
func (l *MemoryLog) readAvailable(after Offset, max int) ([]Record, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var recs []Record
	for _, r := range l.records {
		if r.Offset <= after {
			continue
		}
		recs = append(recs, r)
		if len(recs) >= max {
			break
		}
	}
	if len(recs) > 0 {
		return recs, nil
	}
	return nil, l.wake
}

// Len returns the number of stored records.
func (l *MemoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
