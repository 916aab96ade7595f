package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/stock"
	"anchorstock/pkg/logger"
)

var _ stock.SnapshotCache = (*Redis)(nil)

// Redis is a snapshot cache shared between instances. Snapshots are stored
// as JSON under anchorstock:snapshot:<base>:<location>; per-base invalidation
// scans that prefix.
//
// Cache errors degrade to a miss: the caller recomputes, which is always
// correct.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func snapshotKey(key stock.CacheKey) string {
	return fmt.Sprintf("anchorstock:snapshot:%s:%s", key.BaseID, key.LocationID)
}

func basePrefix(baseID id.ID) string {
	return fmt.Sprintf("anchorstock:snapshot:%s:*", baseID)
}

func (r *Redis) Get(ctx context.Context, key stock.CacheKey) (*stock.Snapshot, bool) {
	payload, err := r.client.Get(ctx, snapshotKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "snapshot cache read failed", "error", err)
		}
		return nil, false
	}

	var snap stock.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		logger.Warn(ctx, "snapshot cache payload corrupt", "error", err)
		return nil, false
	}
	return &snap, true
}

func (r *Redis) Set(ctx context.Context, key stock.CacheKey, snap *stock.Snapshot, ttl time.Duration) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logger.Warn(ctx, "snapshot cache marshal failed", "error", err)
		return
	}
	if err := r.client.Set(ctx, snapshotKey(key), payload, ttl).Err(); err != nil {
		logger.Warn(ctx, "snapshot cache write failed", "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, baseID id.ID) {
	iter := r.client.Scan(ctx, 0, basePrefix(baseID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn(ctx, "snapshot cache scan failed", "error", err, "base_id", baseID)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "snapshot cache invalidation failed", "error", err, "base_id", baseID)
	}
}

func (r *Redis) InvalidateAll(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, "anchorstock:snapshot:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn(ctx, "snapshot cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "snapshot cache invalidation failed", "error", err)
	}
}
