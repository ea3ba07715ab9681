package sqlite

import (
	"database/sql"
	"errors"

	"github.com/tutu-network/timebank/internal/domain"
)

// ─── Key-Value Operations ───────────────────────────────────────────────────

// GetValue returns the raw value stored under key, or
// domain.ErrRecordAbsent when nothing is stored.
func (db *DB) GetValue(key string) ([]byte, error) {
	var value []byte
	err := db.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordAbsent
	}
	return value, err
}

// PutValue inserts or replaces the value stored under key.
func (db *DB) PutValue(key string, value []byte) error {
	_, err := db.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')
	`, key, value)
	return err
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (db *DB) DeleteValue(key string) error {
	_, err := db.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key)
	return err
}
