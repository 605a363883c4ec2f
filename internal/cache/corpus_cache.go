package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"docuchat/internal/app"
)

// CorpusCache keeps a user's corpus entries in redis between queries so
// repeated questions do not re-read every embedding row. Entries are
// invalidated whenever the user ingests or deletes a document.
type CorpusCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewCorpusCache(client *redisv9.Client, ttl time.Duration) *CorpusCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CorpusCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *CorpusCache) Get(ctx context.Context, userID uint) ([]app.CorpusEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get corpus failed: %w", err)
	}

	var corpus []app.CorpusEntry
	if err := json.Unmarshal([]byte(raw), &corpus); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached corpus failed: %w", err)
	}
	return corpus, true, nil
}

func (c *CorpusCache) Set(ctx context.Context, userID uint, corpus []app.CorpusEntry) error {
	payload, err := json.Marshal(corpus)
	if err != nil {
		return fmt.Errorf("marshal corpus cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set corpus failed: %w", err)
	}
	return nil
}

func (c *CorpusCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete corpus failed: %w", err)
	}
	return nil
}

func (c *CorpusCache) key(userID uint) string {
	return fmt.Sprintf("corpus:user:%d", userID)
}
