package store

import (
	"context"
	"sync"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// MemoryStore is an in-memory implementation of [Store].
//
// Events are kept in insertion order and indexed by request ID. Nothing
// survives a restart; use [SQLiteStore] for durability.
type MemoryStore struct {
	mu     sync.RWMutex
	events []event.Event
	index  map[string]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]struct{}),
	}
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, e event.Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[e.RequestID]; exists {
		return false, nil
	}
	e.Action = e.Action.Normalize()
	m.index[e.RequestID] = struct{}{}
	m.events = append(m.events, e.Clone())
	return true, nil
}

// Recent implements [Store].
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]event.Event, error) {
	limit = ClampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]event.Event, 0, min(limit, len(m.events)))
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i].Clone())
	}
	return out, nil
}

// Stats implements [Store].
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Total: len(m.events), ByAction: make(map[string]int)}
	for _, e := range m.events {
		stats.ByAction[string(e.Action)]++
	}
	return stats, nil
}

// Close implements [Store]. It is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
