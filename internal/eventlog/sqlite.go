package eventlog

import (
	"fmt"
	"time"

	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/persistence"
)

// DefaultPollInterval is how often the SQLite reader re-checks the table
// while blocking for new records.
const DefaultPollInterval = 50 * time.Millisecond

// SQLiteLog is the SQLite-backed event log.
//
// Offsets are the AUTOINCREMENT rowids of the events table, so they are
// strictly increasing and never reused. Blocking reads are implemented by
// polling: SQLite has no cross-connection notification primitive, and at
// the sniper's event rates a 50ms poll is indistinguishable from a push.
type SQLiteLog struct {
	conn *persistence.SQLiteConnection
	ids  IDGenerator
	poll time.Duration
}

// SQLiteLogOption configures a SQLiteLog.
type SQLiteLogOption func(*SQLiteLog)

// WithSQLiteIDGenerator overrides the record ID generator.
func WithSQLiteIDGenerator(g IDGenerator) SQLiteLogOption {
	return func(l *SQLiteLog) {
		l.ids = g
	}
}

// WithPollInterval overrides the blocking-read poll interval.
func WithPollInterval(d time.Duration) SQLiteLogOption {
	return func(l *SQLiteLog) {
		l.poll = d
	}
}

// NewSQLiteLog creates a log over an open SQLite connection.
func NewSQLiteLog(conn *persistence.SQLiteConnection, opts ...SQLiteLogOption) *SQLiteLog {
	l := &SQLiteLog{
		conn: conn,
		ids:  UUIDv7Generator{},
		poll: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append implements Writer.
func (l *SQLiteLog) Append(tx persistence.Tx, details []event.Details) error {
	sqlTx, err := persistence.SQLiteTxOf(tx)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	for _, d := range details {
		data, err := event.Marshal(d)
		if err != nil {
			return fmt.Errorf("append events: %w", err)
		}
		if _, err := sqlTx.Exec(
			"INSERT INTO events (id, details) VALUES (?, ?)",
			l.ids.Generate(), data,
		); err != nil {
			return fmt.Errorf("append events: %w", err)
		}
	}

	return nil
}

// Read implements Reader.
func (l *SQLiteLog) Read(after Offset, max int, timeout time.Duration) ([]Record, error) {
	deadline := time.Now().Add(timeout)

	for {
		recs, err := l.readOnce(after, max)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			return recs, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return []Record{}, nil
		}
		if remaining > l.poll {
			remaining = l.poll
		}
		time.Sleep(remaining)
	}
}

func (l *SQLiteLog) readOnce(after Offset, max int) ([]Record, error) {
	rows, err := l.conn.DB().Query(
		"SELECT seq, id, details FROM events WHERE seq > ? ORDER BY seq ASC LIMIT ?",
		int64(after), max,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			seq  int64
			id   string
			data string
		)
		if err := rows.Scan(&seq, &id, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		details, err := event.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode event %d: %w", seq, err)
		}
		recs = append(recs, Record{Offset: Offset(seq), ID: id, Details: details})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return recs, nil
}
