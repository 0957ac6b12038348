package market

import (
	"context"
	"time"

	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/redis"
)

const moversCacheKey = "market:movers"

// RedisQuoteCache keeps the last movers list in redis.
type RedisQuoteCache struct{}

func NewRedisQuoteCache() *RedisQuoteCache {
	return &RedisQuoteCache{}
}

func (RedisQuoteCache) Load(ctx context.Context) (*entities.MarketMovers, bool, error) {
	var movers entities.MarketMovers
	found, err := redis.GetJSON(ctx, moversCacheKey, &movers)
	if err != nil || !found {
		return nil, false, err
	}
	return &movers, true, nil
}

func (RedisQuoteCache) Store(ctx context.Context, movers *entities.MarketMovers, ttl time.Duration) error {
	return redis.SetJSON(ctx, moversCacheKey, movers, ttl)
}
