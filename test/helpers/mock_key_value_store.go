package helpers

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrStoreUnavailable is the failure injected by MockKeyValueStore
var ErrStoreUnavailable = errors.New("store unavailable")

// MockKeyValueStore is an in-memory KeyValueStore with failure injection
type MockKeyValueStore struct {
	mu         sync.RWMutex
	data       map[string]string
	failReads  bool
	failWrites bool
	writes     int
	reads      int
}

// NewMockKeyValueStore creates an empty store
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

// FailReads makes every read return ErrStoreUnavailable
func (m *MockKeyValueStore) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

// FailWrites makes every write return ErrStoreUnavailable
func (m *MockKeyValueStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes counts write calls, failed ones included
func (m *MockKeyValueStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Reads counts read calls, failed ones included
func (m *MockKeyValueStore) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Raw returns the stored value without touching the counters
func (m *MockKeyValueStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Put stores a value without touching the counters
func (m *MockKeyValueStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Len returns the number of stored keys
func (m *MockKeyValueStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failReads {
		return "", false, ErrStoreUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites {
		return ErrStoreUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites {
		return ErrStoreUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MockKeyValueStore) GetAllKeys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failReads {
		return nil, ErrStoreUnavailable
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockKeyValueStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failReads {
		return nil, ErrStoreUnavailable
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MockKeyValueStore) MultiSet(ctx context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites {
		return ErrStoreUnavailable
	}
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *MockKeyValueStore) MultiRemove(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrites {
		return ErrStoreUnavailable
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
