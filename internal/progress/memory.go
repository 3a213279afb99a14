package progress

import (
	"fmt"
	"sync"

	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
)

// MemoryTracker is the in-memory cursor store used in tests.
// The mutex is held only for the duration of a single map access.
type MemoryTracker struct {
	mu      sync.Mutex
	cursors map[string]eventlog.Offset
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{cursors: make(map[string]eventlog.Offset)}
}

// Load implements Tracker.
func (t *MemoryTracker) Load(conn persistence.Connection, id string) (eventlog.Offset, error) {
	var off eventlog.Offset
	err := persistence.WithTx(conn, func(tx persistence.Tx) error {
		var err error
		off, err = t.LoadTx(tx, id)
		return err
	})
	return off, err
}

// Store implements Tracker.
func (t *MemoryTracker) Store(conn persistence.Connection, id string, offset eventlog.Offset) error {
	return persistence.WithTx(conn, func(tx persistence.Tx) error {
		return t.StoreTx(tx, id, offset)
	})
}

// LoadTx implements Tracker.
func (t *MemoryTracker) LoadTx(tx persistence.Tx, id string) (eventlog.Offset, error) {
	if !persistence.IsMemoryTx(tx) {
		return 0, fmt.Errorf("memory tracker: transaction is not a memory transaction (got %T)", tx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursors[id], nil
}

// StoreTx implements Tracker.
func (t *MemoryTracker) StoreTx(tx persistence.Tx, id string, offset eventlog.Offset) error {
	if !persistence.IsMemoryTx(tx) {
		return fmt.Errorf("memory tracker: transaction is not a memory transaction (got %T)", tx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursors[id] = offset
	return nil
}
