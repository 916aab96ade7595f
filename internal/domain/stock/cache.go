package stock

import (
	"context"
	"time"

	"anchorstock/internal/core/id"
)

// SnapshotTTL is how long a computed base snapshot is served before being
// rebuilt.
const SnapshotTTL = 10 * time.Minute

// CacheKey identifies one cached snapshot: a base, optionally narrowed to a
// single location (Nil location means base-wide).
type CacheKey struct {
	BaseID     id.ID
	LocationID id.ID
}

// SnapshotCache stores computed snapshots with expiry. Implementations are
// injected into the service (in-memory for a single process, Redis for
// multi-instance deployments) rather than held as process-wide static state.
//
// No lock is required around a rebuild: concurrent requests racing on a cold
// entry may both recompute and overwrite, which only duplicates work since
// the computation is idempotent.
type SnapshotCache interface {
	// Get returns the cached snapshot if present and unexpired.
	Get(ctx context.Context, key CacheKey) (*Snapshot, bool)

	// Set stores the snapshot with a time-to-live.
	Set(ctx context.Context, key CacheKey, snap *Snapshot, ttl time.Duration)

	// Invalidate drops every entry for the base. Called by ledger-writing
	// services so new entries show up without waiting out the TTL.
	Invalidate(ctx context.Context, baseID id.ID)

	// InvalidateAll drops the whole cache.
	InvalidateAll(ctx context.Context)
}

// Invalidator is the narrow write-path view of the cache. Ledger services
// depend on this instead of the full SnapshotCache.
type Invalidator interface {
	Invalidate(ctx context.Context, baseID id.ID)
}
