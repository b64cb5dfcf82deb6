package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weather_gateway/internal/exchange"

	"github.com/go-redis/redis/v8"
)

// SnapshotStore keeps exchange rate snapshots in Redis. The key TTL only
// lets Redis reclaim old entries; freshness is decided by the rate cache.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Get snapshot from cache
func (s *SnapshotStore) Get(ctx context.Context, base string) (*exchange.Snapshot, error) {
	val, err := s.client.Get(ctx, RatesKey(base)).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var snapshot exchange.Snapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", base, err)
	}
	return &snapshot, nil
}

// Put snapshot to cache with TTL
func (s *SnapshotStore) Put(ctx context.Context, snapshot *exchange.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, RatesKey(snapshot.BaseCurrency), data, s.ttl).Err()
}

// Build cache key for a base currency
func RatesKey(base string) string {
	return fmt.Sprintf("exchange:rates:%s", base)
}
