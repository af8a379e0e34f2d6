package session

import (
	"context"
	"sync"
)

// Keys of the per-client durable storage.
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyPendingCourse = "pendingCourseEnrollment"
)

// Storage is durable key/value storage scoped by client id. It plays the
// part of a browser's local storage: it outlives the in-memory Store so a
// client that comes back after eviction or a restart keeps its credential.
type Storage interface {
	// Get returns the value of key, with ok false when it is not set.
	Get(ctx context.Context, clientID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, clientID, key, value string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, clientID string, keys ...string) error
}

// MemoryStorage keeps values in process memory. Values are lost on restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[clientID][key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[clientID]
	if !ok {
		ns = make(map[string]string)
		m.data[clientID] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, clientID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[clientID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(m.data, clientID)
	}
	return nil
}
