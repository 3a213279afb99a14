package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLiteConnection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer conn.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		conn, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		conn.Close()
	}

	conn, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("final OpenSQLite() failed: %v", err)
	}
	defer conn.Close()

	tables := []string{"events", "progress", "bidding_state"}
	for _, table := range tables {
		var name string
		err := conn.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	conn := openTestDB(t)

	err := WithTx(conn, func(tx Tx) error {
		sqlTx, err := SQLiteTxOf(tx)
		if err != nil {
			return err
		}
		_, err = sqlTx.Exec("INSERT INTO progress (service_id, seq) VALUES (?, ?)", "svc", 7)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}

	var seq int64
	if err := conn.db.QueryRow("SELECT seq FROM progress WHERE service_id = ?", "svc").Scan(&seq); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if seq != 7 {
		t.Errorf("seq = %d, want 7", seq)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	conn := openTestDB(t)
	boom := errors.New("boom")

	err := WithTx(conn, func(tx Tx) error {
		sqlTx, err := SQLiteTxOf(tx)
		if err != nil {
			return err
		}
		if _, err := sqlTx.Exec("INSERT INTO progress (service_id, seq) VALUES (?, ?)", "svc", 7); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	var count int
	if err := conn.db.QueryRow("SELECT COUNT(*) FROM progress").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("progress rows = %d after rollback, want 0", count)
	}
}

func TestSQLiteTxOf_RejectsForeignTx(t *testing.T) {
	mem := NewMemory()
	tx, err := mem.Begin()
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()

	if _, err := SQLiteTxOf(tx); err == nil {
		t.Error("SQLiteTxOf() accepted a memory transaction")
	}
}

func TestIsMemoryTx(t *testing.T) {
	mem := NewMemory()
	tx, err := mem.Begin()
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if !IsMemoryTx(tx) {
		t.Error("IsMemoryTx() = false for memory transaction")
	}
	if err := tx.Commit(); err != nil {
		t.Errorf("Commit() failed: %v", err)
	}
}
