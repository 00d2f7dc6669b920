package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultSettingsCacheTTL = 5 * time.Minute

var _ SettingsStore = (*RedisSettingsCache)(nil)

// RedisSettingsCache is a read-through cache in front of another SettingsStore.
// Cache failures degrade to reading the underlying store.
type RedisSettingsCache struct {
	client *redis.Client
	next   SettingsStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSettingsCache(client *redis.Client, next SettingsStore, ttl time.Duration, logger *zap.Logger) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = DefaultSettingsCacheTTL
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisSettingsCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.Named("settings.cache"),
	}
}

func (c *RedisSettingsCache) key(communityID string) string {
	return fmt.Sprintf("settings:%s", communityID)
}

func (c *RedisSettingsCache) Settings(ctx context.Context, communityID string) (queue.ScopeSettings, error) {
	data, err := c.client.Get(ctx, c.key(communityID)).Bytes()
	switch {
	case err == nil:
		var settings queue.ScopeSettings
		if err := json.Unmarshal(data, &settings); err == nil {
			return settings, nil
		}
		c.logger.Warn("dropping malformed cached settings", zap.String("community_id", communityID))
	case err != redis.Nil:
		c.logger.Warn("settings cache read failed", zap.String("community_id", communityID), zap.Error(err))
	}

	settings, err := c.next.Settings(ctx, communityID)
	if err != nil {
		return queue.ScopeSettings{}, err
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := c.client.Set(ctx, c.key(communityID), data, c.ttl).Err(); err != nil {
			c.logger.Warn("settings cache write failed", zap.String("community_id", communityID), zap.Error(err))
		}
	}

	return settings, nil
}

func (c *RedisSettingsCache) SaveSettings(ctx context.Context, communityID string, settings queue.ScopeSettings) error {
	if err := c.next.SaveSettings(ctx, communityID, settings); err != nil {
		return err
	}

	if err := c.client.Del(ctx, c.key(communityID)).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", zap.String("community_id", communityID), zap.Error(err))
	}

	return nil
}
