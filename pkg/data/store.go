package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kerbaras/shinobix/pkg/utils"
)

// Store is a persistent string-keyed store. Values are opaque strings;
// callers use GetJSON and SetJSON for typed access.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// GetJSON decodes the value under key into T. Missing, unreadable and
// corrupt values all yield fallback.
func GetJSON[T any](s Store, key string, fallback T) T {
	raw, ok, err := s.Get(key)
	if err != nil {
		utils.Debug("store read failed, using default", "key", key, "err", err)
		return fallback
	}
	if !ok || raw == "" {
		return fallback
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		utils.Debug("corrupt stored value, using default", "key", key, "err", err)
		return fallback
	}
	return v
}

func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func OpenStore(driver, path string) (*SQLStore, error) {
	db, err := InitDB(driver, path)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(db), nil
}

func (s *SQLStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// MemoryStore keeps everything in a map. Used by tests and as a fallback
// when the database cannot be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
