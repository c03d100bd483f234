package store

import (
	"context"
	"sync"
	"time"

	"github.com/gatelink/gatelink/internal/redirect"
)

// MemoryStore is an in-memory implementation of redirect.Repository.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*redirect.Record // key -> record
	slugs   map[string]string           // slug -> key
}

// NewMemoryStore creates a new in-memory redirect store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*redirect.Record),
		slugs:   make(map[string]string),
	}
}

func (m *MemoryStore) Add(_ context.Context, record *redirect.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.Key]; exists {
		return redirect.ErrDuplicateKey
	}

	if record.Slug != "" {
		if _, exists := m.slugs[record.Slug]; exists {
			return redirect.ErrDuplicateSlug
		}
	}

	now := time.Now()
	stored := *record
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.records[record.Key] = &stored

	if record.Slug != "" {
		m.slugs[record.Slug] = record.Key
	}

	return nil
}

func (m *MemoryStore) GetByKey(_ context.Context, key string) (*redirect.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[key]
	if !ok {
		return nil, redirect.ErrNotFound
	}

	copied := *record

	return &copied, nil
}

func (m *MemoryStore) GetBySlug(_ context.Context, slug string) (*redirect.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.slugs[slug]
	if !ok {
		return nil, redirect.ErrNotFound
	}

	record, ok := m.records[key]
	if !ok {
		return nil, redirect.ErrNotFound
	}

	copied := *record

	return &copied, nil
}

func (m *MemoryStore) GetAll(_ context.Context) ([]*redirect.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*redirect.Record, 0, len(m.records))

	for _, record := range m.records {
		copied := *record
		records = append(records, &copied)
	}

	return records, nil
}

func (m *MemoryStore) UpdateDestination(_ context.Context, key, destination string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[key]
	if !ok {
		return redirect.ErrNotFound
	}

	// Token stays untouched; only the destination mutates.
	record.Destination = destination
	record.UpdatedAt = time.Now()

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[key]
	if !ok {
		return redirect.ErrNotFound
	}

	if record.Slug != "" {
		delete(m.slugs, record.Slug)
	}

	delete(m.records, key)

	return nil
}

// Compile-time check.
var _ redirect.Repository = (*MemoryStore)(nil)
