package cache

import (
	"context"
	"sync"

	"github.com/koltyakov/aocd/internal/domain"
)

// Memory is an in-process cache, used for ephemeral runs and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[domain.PuzzleKey]string
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[domain.PuzzleKey]string)}
}

func (m *Memory) Get(_ context.Context, key domain.PuzzleKey) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *Memory) Put(_ context.Context, key domain.PuzzleKey, text string) error {
	m.mu.Lock()
	m.entries[key] = text
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
