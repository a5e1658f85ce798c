package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfatura/fatura-api/models"
	"github.com/openfatura/fatura-api/utils"
)

// CacheService guarda resultados de projeção no Redis. The engine is a
// pure function, so a projection stays valid until the next sync; the
// TTL is just a safety net.
type CacheService struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCacheService connects to REDIS_URL. Returns an error when the
// server is unreachable; callers may run without a cache.
func NewCacheService() (*CacheService, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
	}

	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CacheService{rdb: rdb, ttl: 6 * time.Hour}, nil
}

func projectionKey(accountID string, months int) string {
	return fmt.Sprintf("fatura:projections:%s:%d", accountID, months)
}

// GetProjections returns a cached projection, or ok=false on miss or
// cache trouble. Cache failures never surface to the caller.
func (c *CacheService) GetProjections(ctx context.Context, accountID string, months int) (models.ProjectionResult, bool) {
	var result models.ProjectionResult
	raw, err := c.rdb.Get(ctx, projectionKey(accountID, months)).Bytes()
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		utils.Warnf("cache de projeção corrompido para %s: %v", accountID, err)
		return result, false
	}
	return result, true
}

// SetProjections caches a projection result; failures are logged only.
func (c *CacheService) SetProjections(ctx context.Context, accountID string, months int, result models.ProjectionResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, projectionKey(accountID, months), raw, c.ttl).Err(); err != nil {
		utils.Warnf("falha ao gravar cache de projeção para %s: %v", accountID, err)
	}
}

// Invalidate drops every cached projection for an account, called after
// a sync brings new data.
func (c *CacheService) Invalidate(ctx context.Context, accountID string) {
	pattern := fmt.Sprintf("fatura:projections:%s:*", accountID)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		utils.Warnf("falha ao invalidar cache de %s: %v", accountID, err)
	}
}
