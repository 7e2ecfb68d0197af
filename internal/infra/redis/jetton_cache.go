package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openton/tonkit/internal/core/domain"
)

// jettonTTL bounds cache staleness. Jetton metadata is effectively
// immutable, but verification status can change.
const jettonTTL = 24 * time.Hour

// JettonCache caches jetton metadata lookups. Metadata never changes for
// practical purposes, so a cache hit saves a provider round trip per
// jetton per day.
type JettonCache struct {
	rdb *redis.Client
}

func NewJettonCache(client *Client) *JettonCache {
	return &JettonCache{rdb: client.rdb}
}

func jettonKey(address string) string {
	return fmt.Sprintf("jetton_info:%s", address)
}

// Get returns the cached jetton, or (nil, nil) on a miss.
func (c *JettonCache) Get(ctx context.Context, address string) (*domain.Jetton, error) {
	data, err := c.rdb.Get(ctx, jettonKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jetton cache get failed: %w", err)
	}

	var jetton domain.Jetton
	if err := json.Unmarshal(data, &jetton); err != nil {
		return nil, fmt.Errorf("jetton cache entry not parseable: %w", err)
	}
	return &jetton, nil
}

// Put stores jetton metadata with the cache TTL.
func (c *JettonCache) Put(ctx context.Context, jetton *domain.Jetton) error {
	data, err := json.Marshal(jetton)
	if err != nil {
		return fmt.Errorf("failed to serialize jetton: %w", err)
	}
	if err := c.rdb.Set(ctx, jettonKey(jetton.Address), data, jettonTTL).Err(); err != nil {
		return fmt.Errorf("jetton cache put failed: %w", err)
	}
	return nil
}
