package persistence

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Current schema (events, progress, bidding_state)
const currentSchemaVersion = 1

// SQLiteConnection is the SQLite-backed production backend.
// Uses WAL mode for concurrent read access.
type SQLiteConnection struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteConnection, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteConnection{db: db}, nil
}

// Begin starts a real ACID transaction.
func (c *SQLiteConnection) Begin() (Tx, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin sqlite transaction: %w", err)
	}
	return &SQLiteTx{tx: tx}, nil
}

// Close closes the database connection.
func (c *SQLiteConnection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer going through a transaction when writing.
func (c *SQLiteConnection) DB() *sql.DB {
	return c.db
}

// SQLiteTx wraps a sql.Tx as a persistence.Tx.
type SQLiteTx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *SQLiteTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *SQLiteTx) Rollback() error {
	return t.tx.Rollback()
}

// Tx returns the wrapped sql.Tx.
func (t *SQLiteTx) Tx() *sql.Tx {
	return t.tx
}

// SQLiteTxOf extracts the sql.Tx from a persistence.Tx, failing if the
// transaction belongs to another backend. Stores call this to enforce
// that backends are never mixed at runtime.
func SQLiteTxOf(tx Tx) (*sql.Tx, error) {
	st, ok := tx.(*SQLiteTx)
	if !ok {
		return nil, fmt.Errorf("transaction is not a sqlite transaction (got %T)", tx)
	}
	return st.tx, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// No incremental migrations yet; stamp the current version so future
	// migrations have a baseline to start from.
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
