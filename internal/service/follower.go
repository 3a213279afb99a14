package service

import (
	"fmt"
	"time"

	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
	"github.com/roach88/sniper/internal/progress"
)

const (
	// defaultBatchSize bounds how many records one poll fetches.
	defaultBatchSize = 16

	// defaultReadTimeout bounds how long a poll blocks with no new
	// records, which is also the worst-case stop latency of a follower
	// loop.
	defaultReadTimeout = time.Second
)

// LogFollower is a transactional consumer of the event log.
//
// For each unseen event the driver opens one transaction, calls
// HandleEvent, and - only if it succeeds - persists the advanced cursor
// inside that same transaction before committing. A handler failure rolls
// back everything written during the call and the event is redelivered on
// the next poll, so handlers see at-least-once delivery and must be safe
// to re-apply to the same event.
type LogFollower interface {
	// HandleEvent processes one event. All writes must go through tx.
	HandleEvent(tx persistence.Tx, rec eventlog.Record) error

	// ProgressID returns the service ID keying this consumer's cursor.
	ProgressID() string
}

// FollowOption tunes a follower loop.
type FollowOption func(*followSettings)

type followSettings struct {
	batchSize   int
	readTimeout time.Duration
}

// WithBatchSize bounds how many records one poll fetches.
func WithBatchSize(n int) FollowOption {
	return func(s *followSettings) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithReadTimeout bounds how long a poll blocks with no new records.
func WithReadTimeout(d time.Duration) FollowOption {
	return func(s *followSettings) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

func newFollowSettings(opts []FollowOption) followSettings {
	s := followSettings{
		batchSize:   defaultBatchSize,
		readTimeout: defaultReadTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SpawnLogFollower starts the transactional consumption loop for f.
//
// The starting cursor is loaded once; afterwards the loop's in-memory
// cursor and the stored one advance together, one committed transaction
// per event.
func (c *Control) SpawnLogFollower(
	conn persistence.Connection,
	tracker progress.Tracker,
	reader eventlog.Reader,
	f LogFollower,
	opts ...FollowOption,
) *Handle {
	id := f.ProgressID()
	settings := newFollowSettings(opts)

	cursor, err := tracker.Load(conn, id)
	if err != nil {
		return c.failedHandle(id, fmt.Errorf("load progress: %w", err))
	}

	return c.SpawnLoop(id, func() error {
		next, _, err := followOnce(conn, tracker, reader, f, cursor, settings.batchSize, settings.readTimeout)
		cursor = next
		return err
	})
}

// followOnce fetches one batch past cursor and processes each record in
// its own transaction. It returns the new cursor and how many records
// were committed; on error the cursor reflects only the committed ones.
func followOnce(
	conn persistence.Connection,
	tracker progress.Tracker,
	reader eventlog.Reader,
	f LogFollower,
	cursor eventlog.Offset,
	batchSize int,
	timeout time.Duration,
) (eventlog.Offset, int, error) {
	id := f.ProgressID()

	recs, err := reader.Read(cursor, batchSize, timeout)
	if err != nil {
		return cursor, 0, fmt.Errorf("read events: %w", err)
	}

	for i, rec := range recs {
		err := persistence.WithTx(conn, func(tx persistence.Tx) error {
			if err := f.HandleEvent(tx, rec); err != nil {
				return err
			}
			return tracker.StoreTx(tx, id, rec.Offset)
		})
		if err != nil {
			return cursor, i, fmt.Errorf("process event at offset %d: %w", rec.Offset, err)
		}
		cursor = rec.Offset
	}

	return cursor, len(recs), nil
}

// Drain synchronously processes every event currently in the log that f
// has not seen yet, one transaction per event, and returns how many were
// processed. Used by tests and one-shot tooling; long-running consumption
// goes through SpawnLogFollower.
func Drain(
	conn persistence.Connection,
	tracker progress.Tracker,
	reader eventlog.Reader,
	f LogFollower,
) (int, error) {
	cursor, err := tracker.Load(conn, f.ProgressID())
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}

	total := 0
	for {
		next, n, err := followOnce(conn, tracker, reader, f, cursor, defaultBatchSize, 0)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		cursor = next
	}
}

// SpawnEventLoop starts the non-transactional consumption loop: handler
// is invoked per event and the cursor is persisted afterwards, outside
// any transaction shared with the handler's effects.
//
// This is a deliberately weaker mode than SpawnLogFollower: a crash
// between the handler returning and the cursor write re-applies the
// handler's effects on restart. It exists for handlers whose effects do
// not go through the persistence backend at all (e.g. talking to the
// auction house over the network), where no shared transaction is
// possible anyway. Do not use it for handlers that write domain state.
func (c *Control) SpawnEventLoop(
	conn persistence.Connection,
	tracker progress.Tracker,
	id string,
	reader eventlog.Reader,
	handler func(event.Details) error,
) *Handle {
	cursor, err := tracker.Load(conn, id)
	if err != nil {
		return c.failedHandle(id, fmt.Errorf("load progress: %w", err))
	}

	return c.SpawnLoop(id, func() error {
		recs, err := reader.Read(cursor, 1, defaultReadTimeout)
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		for _, rec := range recs {
			if err := handler(rec.Details); err != nil {
				return fmt.Errorf("handle event at offset %d: %w", rec.Offset, err)
			}
			cursor = rec.Offset
			if err := tracker.Store(conn, id, rec.Offset); err != nil {
				return fmt.Errorf("store progress: %w", err)
			}
		}
		return nil
	})
}
