// Package progress stores the last-processed log offset for each
// independent consumer (keyed by service ID).
//
// The transactional variants (LoadTx/StoreTx) are the ones that matter:
// invoked inside the same transaction as the domain writes caused by the
// event at that offset, they guarantee a crash before commit replays the
// event and a commit never leaves effects and cursor out of sync. The
// cursor is overwritten unconditionally; monotonicity is a caller
// contract.
package progress

import (
	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
)

// Tracker is a persistent per-service cursor store.
//
// Load and Store are one-operation conveniences defined as opening and
// immediately committing a transaction. A returned offset of zero means
// the service has never committed progress.
type Tracker interface {
	Load(conn persistence.Connection, id string) (eventlog.Offset, error)
	Store(conn persistence.Connection, id string, offset eventlog.Offset) error
	LoadTx(tx persistence.Tx, id string) (eventlog.Offset, error)
	StoreTx(tx persistence.Tx, id string, offset eventlog.Offset) error
}
