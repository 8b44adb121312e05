// Package store provides budget.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	documents   map[string]budget.Document
	subscribers map[string]map[int]func(budget.Document)
	nextSub     int
}

func NewMemory() *Memory {
	return &Memory{
		documents:   make(map[string]budget.Document),
		subscribers: make(map[string]map[int]func(budget.Document)),
	}
}

func (m *Memory) Load(_ context.Context, key string) (budget.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[key]
	if !ok {
		return budget.Document{}, false, nil
	}
	return doc.Clone(), true, nil
}

func (m *Memory) Save(_ context.Context, key string, doc budget.Document) error {
	m.mu.Lock()
	m.documents[key] = doc.Clone()
	// Snapshot subscribers so callbacks run outside the lock.
	var fns []func(budget.Document)
	for _, fn := range m.subscribers[key] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(doc.Clone())
	}
	return nil
}

func (m *Memory) Subscribe(key string, fn func(budget.Document)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribers[key] == nil {
		m.subscribers[key] = make(map[int]func(budget.Document))
	}
	id := m.nextSub
	m.nextSub++
	m.subscribers[key][id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers[key], id)
	}
}
