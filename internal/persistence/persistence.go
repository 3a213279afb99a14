// Package persistence abstracts the storage backend behind a connection
// and scoped transactions, so the log-follower driver is written once and
// runs against either the in-memory backend (tests) or SQLite
// (production).
//
// Writes made through a Tx are invisible to other transactions until
// Commit, and are discarded on Rollback. Backends are selected at startup
// and never mixed at runtime: every store belongs to one backend and
// rejects transactions from another.
package persistence

import (
	"errors"
	"fmt"
)

// Tx is a scoped transaction over a backend.
type Tx interface {
	Commit() error
	Rollback() error
}

// Connection is an open handle to a backend.
type Connection interface {
	// Begin starts a new transaction.
	Begin() (Tx, error)

	// Close releases the connection.
	Close() error
}

// WithTx runs fn inside a transaction: committed if fn returns nil,
// rolled back otherwise. The one-operation convenience variants of the
// stores (Load/Store without a transaction) are defined in terms of this.
func WithTx(conn Connection, fn func(tx Tx) error) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
