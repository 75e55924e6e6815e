package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Catalog.
type Memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{entries: make(map[uuid.UUID]Entry)}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Recent returns the newest entries first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	limit = normalizeLimit(limit)

	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Latest(_ context.Context, path string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		latest Entry
		found  bool
	)
	for _, e := range m.entries {
		if e.Path == path && (!found || e.CreatedAt.After(latest.CreatedAt)) {
			latest, found = e, true
		}
	}
	if !found {
		return Entry{}, ErrNotFound
	}
	return latest, nil
}

func (m *Memory) Close() error { return nil }
