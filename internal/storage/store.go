package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"keywordagent/pkg"
)

// ErrNotFound is returned when a run id is unknown or expired.
var ErrNotFound = errors.New("run not found")

// RunStore persists completed pipeline results for later retrieval.
type RunStore interface {
	SaveRun(ctx context.Context, result pkg.KeywordResult, ttl time.Duration) error
	GetRun(ctx context.Context, runID string) (*pkg.KeywordResult, error)
	Close() error
}

type memoryEntry struct {
	result    pkg.KeywordResult
	expiresAt time.Time
}

// MemoryStore is the in-process fallback used when Redis is not
// configured. Entries expire lazily on read.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryStore) SaveRun(_ context.Context, result pkg.KeywordResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[result.RunID] = memoryEntry{
		result:    result,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) GetRun(_ context.Context, runID string) (*pkg.KeywordResult, error) {
	m.mu.RLock()
	entry, ok := m.runs[runID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.runs, runID)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	result := entry.result
	return &result, nil
}

func (m *MemoryStore) Close() error { return nil }
