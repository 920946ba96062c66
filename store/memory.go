package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pta-xyz/go-pta/eventlog"
)

// MemoryStore keeps runs in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]*Run
	events map[string][]eventlog.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[string]*Run),
		events: make(map[string][]eventlog.Event),
	}
}

// SaveRun stores a run and its events.
func (m *MemoryStore) SaveRun(_ context.Context, run *Run, events []eventlog.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return ErrDuplicateRun
	}

	stored := *run
	m.runs[run.ID] = &stored
	m.events[run.ID] = append([]eventlog.Event(nil), events...)
	return nil
}

// GetRun retrieves a run by ID.
func (m *MemoryStore) GetRun(_ context.Context, id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

// ListRuns retrieves runs matching the filter, newest first.
func (m *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Run
	for _, run := range m.runs {
		if filter.matches(run) {
			copied := *run
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Events retrieves a run's events in step order.
func (m *MemoryStore) Events(_ context.Context, runID string) ([]eventlog.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events, ok := m.events[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return append([]eventlog.Event(nil), events...), nil
}

// DeleteRun removes a run and its events.
func (m *MemoryStore) DeleteRun(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(m.runs, id)
	delete(m.events, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
