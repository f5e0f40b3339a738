package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps values in a map. Subscribers are called synchronously
// after the write lock is released.
type MemoryStore struct {
	scope Scope

	mu     sync.RWMutex
	values map[string]string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

func NewMemoryStore(scope Scope) *MemoryStore {
	return &MemoryStore{
		scope:  scope,
		values: make(map[string]string),
		subs:   make(map[int]func(Change)),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()

	m.notify(Change{Scope: m.scope, Key: key, Value: value})
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.values[key]
	delete(m.values, key)
	m.mu.Unlock()

	if existed {
		m.notify(Change{Scope: m.scope, Key: key, Removed: true})
	}
	return nil
}

// Clear drops every key, the way a browser discards session storage when
// the tab closes. Subscribers are not told.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *MemoryStore) Subscribe(fn func(Change)) func() {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *MemoryStore) notify(c Change) {
	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
