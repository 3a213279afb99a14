package persistence

// MemoryConnection is the in-memory backend used in tests.
//
// Its transactions always succeed and provide no real isolation: the
// in-memory stores apply writes immediately under their own mutexes.
// This is a deliberate trade-off for a test backend; the driver code
// paths stay identical to the SQLite backend.
type MemoryConnection struct{}

// NewMemory creates an in-memory backend connection.
func NewMemory() *MemoryConnection {
	return &MemoryConnection{}
}

// Begin starts a no-op transaction.
func (c *MemoryConnection) Begin() (Tx, error) {
	return memoryTx{}, nil
}

// Close is a no-op.
func (c *MemoryConnection) Close() error {
	return nil
}

type memoryTx struct{}

func (memoryTx) Commit() error   { return nil }
func (memoryTx) Rollback() error { return nil }

// IsMemoryTx reports whether tx belongs to the in-memory backend. The
// in-memory stores use it to reject transactions from another backend.
func IsMemoryTx(tx Tx) bool {
	_, ok := tx.(memoryTx)
	return ok
}
