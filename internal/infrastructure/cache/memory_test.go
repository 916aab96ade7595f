package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/stock"
)

func snap() *stock.Snapshot {
	return &stock.Snapshot{ComputedAt: time.Now()}
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := stock.CacheKey{BaseID: id.New()}

	_, ok := m.Get(ctx, key)
	assert.False(t, ok, "cold cache")

	want := snap()
	m.Set(ctx, key, want, time.Minute)

	got, ok := m.Get(ctx, key)
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := stock.CacheKey{BaseID: id.New()}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	m.now = func() time.Time { return now }

	m.Set(ctx, key, snap(), 10*time.Minute)

	now = base.Add(10 * time.Minute)
	_, ok := m.Get(ctx, key)
	assert.True(t, ok, "expiry boundary is exclusive")

	now = base.Add(10*time.Minute + time.Second)
	_, ok = m.Get(ctx, key)
	assert.False(t, ok, "expired entry reads as absent")
}

func TestMemoryInvalidateIsBaseScoped(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	baseA := id.New()
	baseB := id.New()
	locKey := stock.CacheKey{BaseID: baseA, LocationID: id.New()}

	m.Set(ctx, stock.CacheKey{BaseID: baseA}, snap(), time.Minute)
	m.Set(ctx, locKey, snap(), time.Minute)
	m.Set(ctx, stock.CacheKey{BaseID: baseB}, snap(), time.Minute)

	m.Invalidate(ctx, baseA)

	_, ok := m.Get(ctx, stock.CacheKey{BaseID: baseA})
	assert.False(t, ok)
	_, ok = m.Get(ctx, locKey)
	assert.False(t, ok, "location-scoped entries drop with the base")
	_, ok = m.Get(ctx, stock.CacheKey{BaseID: baseB})
	assert.True(t, ok, "other bases keep their entries")
}

func TestMemoryInvalidateAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	keyA := stock.CacheKey{BaseID: id.New()}
	keyB := stock.CacheKey{BaseID: id.New()}
	m.Set(ctx, keyA, snap(), time.Minute)
	m.Set(ctx, keyB, snap(), time.Minute)

	m.InvalidateAll(ctx)

	_, ok := m.Get(ctx, keyA)
	assert.False(t, ok)
	_, ok = m.Get(ctx, keyB)
	assert.False(t, ok)
}
