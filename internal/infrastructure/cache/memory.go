// Package cache provides snapshot cache backends: an in-process TTL map for
// single-instance deployments and a Redis variant for multi-instance ones.
package cache

import (
	"context"
	"sync"
	"time"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/stock"
)

var _ stock.SnapshotCache = (*Memory)(nil)

type memoryEntry struct {
	snap      *stock.Snapshot
	expiresAt time.Time
}

// Memory is an in-process snapshot cache. Reads race reads/writes safely; a
// stale entry is simply treated as absent and overwritten by the caller.
type Memory struct {
	mu      sync.RWMutex
	entries map[stock.CacheKey]memoryEntry

	// now is swappable for tests
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[stock.CacheKey]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key stock.CacheKey) (*stock.Snapshot, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.snap, true
}

func (m *Memory) Set(ctx context.Context, key stock.CacheKey, snap *stock.Snapshot, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{snap: snap, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

// Invalidate drops every entry for one base, location-scoped entries
// included.
func (m *Memory) Invalidate(ctx context.Context, baseID id.ID) {
	m.mu.Lock()
	for key := range m.entries {
		if key.BaseID == baseID {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

func (m *Memory) InvalidateAll(ctx context.Context) {
	m.mu.Lock()
	m.entries = make(map[stock.CacheKey]memoryEntry)
	m.mu.Unlock()
}
