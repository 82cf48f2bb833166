package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/core/domain"
	"github.com/quotecraft/quoting-system/internal/core/ports"
)

const (
	promptKeyPrefix     = "prompt:"
	defaultPromptTTL    = 5 * time.Minute
	invalidateScanCount = 100
)

// PromptCache is a read-through cache in front of a ports.PromptLayerReader.
// Only hits are cached; a missing layer is always asked of the store again.
// Redis failures fall back to the store.
//
// Key format: prompt:core, prompt:industry:<industry_id>
type PromptCache struct {
	client *redis.Client
	next   ports.PromptLayerReader
	ttl    time.Duration
	log    zerolog.Logger
}

// NewPromptCache wraps next. A nil client disables caching.
func NewPromptCache(client *redis.Client, next ports.PromptLayerReader, ttl time.Duration, log zerolog.Logger) *PromptCache {
	if ttl <= 0 {
		ttl = defaultPromptTTL
	}
	return &PromptCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *PromptCache) ActiveCore(ctx context.Context) (*domain.SystemPrompt, error) {
	return c.get(ctx, coreKey(), func() (*domain.SystemPrompt, error) {
		return c.next.ActiveCore(ctx)
	})
}

func (c *PromptCache) ActiveForIndustry(ctx context.Context, industryID string) (*domain.SystemPrompt, error) {
	return c.get(ctx, industryKey(industryID), func() (*domain.SystemPrompt, error) {
		return c.next.ActiveForIndustry(ctx, industryID)
	})
}

// Invalidate deletes every cached prompt layer.
func (c *PromptCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, promptKeyPrefix+"*", invalidateScanCount).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan prompt keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete prompt keys: %w", err)
	}
	return nil
}

func (c *PromptCache) get(ctx context.Context, key string, load func() (*domain.SystemPrompt, error)) (*domain.SystemPrompt, error) {
	if c.client == nil {
		return load()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.SystemPrompt
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cached prompt")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("prompt cache read failed")
	}

	p, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("prompt cache write failed")
		}
	}
	return p, nil
}

func coreKey() string { return promptKeyPrefix + string(domain.PromptCore) }

func industryKey(industryID string) string {
	return promptKeyPrefix + string(domain.PromptIndustry) + ":" + industryID
}
