package kv

import (
	"context"
	"sync"
)

// MemoryAdapter is an in-process Adapter used by tests and by callers
// that want a throwaway store. Safe for concurrent use.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// FailWrites makes every write report failure, for exercising the
	// "change is in memory but not durable" degradation path.
	FailWrites bool
}

type memoryEntry struct {
	value   []byte
	version Version
}

// NewMemoryAdapter creates an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{entries: make(map[string]memoryEntry)}
}

// Get implements Adapter.
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, Version, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry, ok := a.entries[key]
	if !ok {
		return nil, 0, false
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, entry.version, true
}

// Set implements Adapter.
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailWrites {
		return false
	}
	a.entries[key] = memoryEntry{value: cloneBytes(value), version: a.entries[key].version + 1}
	return true
}

// CompareAndSet implements Adapter.
func (a *MemoryAdapter) CompareAndSet(_ context.Context, key string, value []byte, expect Version) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailWrites {
		return false
	}
	if a.entries[key].version != expect {
		return false
	}
	a.entries[key] = memoryEntry{value: cloneBytes(value), version: expect + 1}
	return true
}

func cloneBytes(b []byte) []byte {
	dup := make([]byte, len(b))
	copy(dup, b)
	return dup
}
