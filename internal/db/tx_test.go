package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	conn.SetMaxOpenConns(1)

	_, err = conn.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	if err != nil {
		conn.Close()
		t.Fatalf("failed to create table: %v", err)
	}

	return conn
}

func count(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv VALUES ('playlist', '[]')`); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO kv VALUES ('loopMode', 'LIST')`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if n := count(t, conn); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	testErr := errors.New("test error")

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv VALUES ('playlist', '[]')`); err != nil {
			return err
		}
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Fatalf("WithTx error = %v, want %v", err, testErr)
	}
	if n := count(t, conn); n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestWithTx_ConstraintFailureRollsBackEarlierWrites(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv VALUES ('playlist', '[]')`); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO kv VALUES ('loopMode', NULL)`)
		return err
	})

	if err == nil {
		t.Fatal("expected NOT NULL violation")
	}
	if n := count(t, conn); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestWithTx_ClosedDB(t *testing.T) {
	conn := setupTestDB(t)
	conn.Close()

	called := false
	err := WithTx(conn, func(*sql.Tx) error {
		called = true
		return nil
	})

	if err == nil {
		t.Error("expected error on closed db")
	}
	if called {
		t.Error("fn should not run when begin fails")
	}
}
