// Package store adapts a key-value backend to the domain.Store contract.
//
// A missing or undecodable record is reported as absent so the engine can
// recreate the default. Write failures are wrapped in domain.ErrStoreWrite
// and left for the caller to report.
package store

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/tutu-network/timebank/internal/domain"
	"github.com/tutu-network/timebank/internal/infra/codec"
	"github.com/tutu-network/timebank/internal/infra/observability"
)

// KV is the raw persistence slot. *sqlite.DB and *Memory implement it.
type KV interface {
	GetValue(key string) ([]byte, error)
	PutValue(key string, value []byte) error
	DeleteValue(key string) error
}

// RecordStore persists one TimerRecord under a fixed key.
type RecordStore struct {
	kv    KV
	key   string
	codec codec.Codec
}

// New creates a RecordStore. An empty key selects domain.StorageKey.
func New(kv KV, key string) *RecordStore {
	if key == "" {
		key = domain.StorageKey
	}
	return &RecordStore{kv: kv, key: key, codec: codec.Default}
}

// Key returns the storage key in use.
func (s *RecordStore) Key() string { return s.key }

// Load implements domain.Store.
func (s *RecordStore) Load() (domain.TimerRecord, bool) {
	data, err := s.kv.GetValue(s.key)
	if err != nil {
		if errors.Is(err, domain.ErrRecordAbsent) {
			observability.StoreReadFallbacks.WithLabelValues("absent").Inc()
		} else {
			observability.StoreReadFallbacks.WithLabelValues("error").Inc()
			log.Printf("[store] read %q failed, using default: %v", s.key, err)
		}
		return domain.TimerRecord{}, false
	}

	rec, err := s.codec.Unmarshal(data)
	if err != nil {
		observability.StoreReadFallbacks.WithLabelValues("malformed").Inc()
		log.Printf("[store] discarding record %q: %v", s.key, err)
		return domain.TimerRecord{}, false
	}
	return rec, true
}

// Save implements domain.Store.
func (s *RecordStore) Save(rec domain.TimerRecord) error {
	data, err := s.codec.Marshal(rec)
	if err != nil {
		observability.StoreWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: encode: %v", domain.ErrStoreWrite, err)
	}
	if err := s.kv.PutValue(s.key, data); err != nil {
		observability.StoreWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	observability.StoreWrites.WithLabelValues("ok").Inc()
	return nil
}

// Clear removes the stored record.
func (s *RecordStore) Clear() error {
	return s.kv.DeleteValue(s.key)
}

// ─── In-Memory Backend ──────────────────────────────────────────────────────

// Memory is a process-local KV backend.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// GetValue returns a copy of the stored bytes.
func (m *Memory) GetValue(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, domain.ErrRecordAbsent
	}
	return append([]byte(nil), v...), nil
}

// PutValue stores a copy of value.
func (m *Memory) PutValue(key string, value []byte) error {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

// DeleteValue removes key.
func (m *Memory) DeleteValue(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
