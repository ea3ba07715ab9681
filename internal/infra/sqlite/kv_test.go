package sqlite

import (
	"errors"
	"testing"

	"github.com/tutu-network/timebank/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Schema ─────────────────────────────────────────────────────────────────

func TestMigrations_TableExists(t *testing.T) {
	db := newTestDB(t)

	var count int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='kv_store'`).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("kv_store table count = %d, want 1", count)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := db.PutValue("k", []byte("v")); err != nil {
		t.Fatalf("PutValue() error: %v", err)
	}
	db.Close()

	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db2.Close()

	got, err := db2.GetValue("k")
	if err != nil {
		t.Fatalf("GetValue() error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("GetValue() = %q, want %q", got, "v")
	}
}

// ─── Key-Value ──────────────────────────────────────────────────────────────

func TestGetValue_Missing(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetValue("nope")
	if !errors.Is(err, domain.ErrRecordAbsent) {
		t.Errorf("GetValue(missing) error = %v, want ErrRecordAbsent", err)
	}
}

func TestPutValue_Overwrite(t *testing.T) {
	db := newTestDB(t)
	db.PutValue(domain.StorageKey, []byte("first"))
	db.PutValue(domain.StorageKey, []byte("second"))

	got, err := db.GetValue(domain.StorageKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("GetValue() = %q, want %q", got, "second")
	}

	var rows int
	db.db.QueryRow(`SELECT COUNT(*) FROM kv_store`).Scan(&rows)
	if rows != 1 {
		t.Errorf("row count = %d, want 1", rows)
	}
}

func TestDeleteValue(t *testing.T) {
	db := newTestDB(t)
	db.PutValue("k", []byte("v"))
	if err := db.DeleteValue("k"); err != nil {
		t.Fatalf("DeleteValue() error: %v", err)
	}
	if _, err := db.GetValue("k"); !errors.Is(err, domain.ErrRecordAbsent) {
		t.Errorf("GetValue after delete error = %v, want ErrRecordAbsent", err)
	}
	if err := db.DeleteValue("k"); err != nil {
		t.Errorf("DeleteValue(missing) error = %v, want nil", err)
	}
}
