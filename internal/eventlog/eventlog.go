// Package eventlog provides the append-only ordered event log: a writer
// that appends records inside a transaction and readers that block until
// new records arrive.
//
// The log is stateless with respect to consumers: each consumer tracks
// its own position externally (see the progress package) and passes it
// back as the `after` argument on the next read.
package eventlog

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/persistence"
)

// Offset is the position of a record in the log. Offsets are strictly
// increasing within one log and carry no meaning beyond ordering. The
// zero value means "before the first record".
type Offset int64

// Record is one stored log entry.
type Record struct {
	// Offset is the position assigned at append time.
	Offset Offset `json:"offset"`

	// ID is a unique, time-sortable identifier for correlation across
	// systems. It plays no role in ordering.
	ID string `json:"id"`

	// Details is the event payload.
	Details event.Details `json:"details"`
}

// Writer appends events to the log.
type Writer interface {
	// Append stores the events in order, assigning each a fresh offset
	// strictly greater than all previously assigned offsets. The writes
	// become visible only when tx commits.
	Append(tx persistence.Tx, details []event.Details) error
}

// Reader reads records from the log in offset order.
type Reader interface {
	// Read returns up to max records with offset strictly greater than
	// after, in offset order. If none are available it blocks until a
	// matching record appears or timeout elapses, in which case it
	// returns an empty slice (not an error). A timeout of zero returns
	// immediately.
	Read(after Offset, max int, timeout time.Duration) ([]Record, error)
}

// Log combines the producer and consumer interfaces of one event log.
type Log interface {
	Writer
	Reader
}

// IDGenerator generates record IDs at append time.
// Implemented by UUIDv7Generator (production) and a fixed-sequence
// generator in testutil (deterministic tests, golden traces).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, making IDs
// sortable by creation time, which helps when correlating records across
// logs and systems.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
