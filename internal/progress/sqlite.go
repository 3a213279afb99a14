package progress

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
)

// SQLiteTracker stores cursors in the progress table.
// The struct is stateless: all access goes through the supplied
// transaction, keeping cursor writes atomic with domain writes.
type SQLiteTracker struct{}

// NewSQLiteTracker creates a SQLite-backed tracker.
func NewSQLiteTracker() *SQLiteTracker {
	return &SQLiteTracker{}
}

// Load implements Tracker.
func (t *SQLiteTracker) Load(conn persistence.Connection, id string) (eventlog.Offset, error) {
	var off eventlog.Offset
	err := persistence.WithTx(conn, func(tx persistence.Tx) error {
		var err error
		off, err = t.LoadTx(tx, id)
		return err
	})
	return off, err
}

// Store implements Tracker.
func (t *SQLiteTracker) Store(conn persistence.Connection, id string, offset eventlog.Offset) error {
	return persistence.WithTx(conn, func(tx persistence.Tx) error {
		return t.StoreTx(tx, id, offset)
	})
}

// LoadTx implements Tracker.
func (t *SQLiteTracker) LoadTx(tx persistence.Tx, id string) (eventlog.Offset, error) {
	sqlTx, err := persistence.SQLiteTxOf(tx)
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}

	var seq int64
	err = sqlTx.QueryRow("SELECT seq FROM progress WHERE service_id = ?", id).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	return eventlog.Offset(seq), nil
}

// StoreTx implements Tracker.
func (t *SQLiteTracker) StoreTx(tx persistence.Tx, id string, offset eventlog.Offset) error {
	sqlTx, err := persistence.SQLiteTxOf(tx)
	if err != nil {
		return fmt.Errorf("store progress: %w", err)
	}

	_, err = sqlTx.Exec(`
		INSERT INTO progress (service_id, seq) VALUES (?, ?)
		ON CONFLICT(service_id) DO UPDATE SET seq = excluded.seq
	`, id, int64(offset))
	if err != nil {
		return fmt.Errorf("store progress: %w", err)
	}
	return nil
}
