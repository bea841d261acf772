package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/grader"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// ResultCache memoizes settled tables in Redis, keyed by a digest of the
// exact inputs and policy. The cache belongs to the orchestrator: a miss or
// a Redis outage just means the pipeline runs again.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a cache with the given TTL
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key digests edges, scores, and policy into a stable cache key. Identical
// inputs under the same policy always produce the same key.
func Key(edges []models.Edge, scores []models.Score, policy grader.Policy) (string, error) {
	h := sha256.New()

	enc := json.NewEncoder(h)
	if err := enc.Encode(edges); err != nil {
		return "", fmt.Errorf("hash edges: %w", err)
	}
	if err := enc.Encode(scores); err != nil {
		return "", fmt.Errorf("hash scores: %w", err)
	}
	if err := enc.Encode(policy); err != nil {
		return "", fmt.Errorf("hash policy: %w", err)
	}

	return "settled:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Get fetches a cached settled table. The second return is false on miss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]models.SettledBet, bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var bets []models.SettledBet
	if err := json.Unmarshal([]byte(raw), &bets); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}

	return bets, true, nil
}

// Set stores a settled table under the key
func (c *ResultCache) Set(ctx context.Context, key string, bets []models.SettledBet) error {
	raw, err := json.Marshal(bets)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
