// Package storage persists the small amount of durable client state:
// the session token and the UI preferences.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cropsense/internal/metrics"
)

// Well-known keys
const (
	KeyToken    = "token"
	KeyLanguage = "cropsense_lang"
	KeyTheme    = "theme"
)

// Store is a durable string key/value store
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps state for the life of the process
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// instrumented records metrics around another Store
type instrumented struct {
	driver string
	next   Store
}

// Instrument wraps s so every operation is counted under driver
func Instrument(driver string, s Store) Store {
	return &instrumented{driver: driver, next: s}
}

func (i *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := i.next.Get(ctx, key)
	metrics.RecordStoreOp(i.driver, "get", time.Since(start), err)
	if err != nil {
		return "", false, fmt.Errorf("%s store: get %s: %w", i.driver, key, err)
	}
	return v, ok, nil
}

func (i *instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	metrics.RecordStoreOp(i.driver, "set", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s store: set %s: %w", i.driver, key, err)
	}
	return nil
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	metrics.RecordStoreOp(i.driver, "delete", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s store: delete %s: %w", i.driver, key, err)
	}
	return nil
}

func (i *instrumented) Close() error { return i.next.Close() }
