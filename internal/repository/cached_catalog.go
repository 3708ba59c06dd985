package repository

import (
	"context"
	"encoding/json"
	"time"

	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"
	"coder_quest_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedCatalog 在 CatalogReader 前加一层 Redis 读穿缓存。
// Redis 为 nil 或读写失败时直接回源，不影响业务结果。
type CachedCatalog struct {
	Next  CatalogReader
	Redis *redis.Client
	TTL   time.Duration
}

func NewCachedCatalog(next CatalogReader, rdb *redis.Client, ttl time.Duration) *CachedCatalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCatalog{Next: next, Redis: rdb, TTL: ttl}
}

func (c *CachedCatalog) FindAchievement(ctx context.Context, id string) (*model.AchievementDefinition, error) {
	var def model.AchievementDefinition
	if c.get(ctx, util.CatalogAchievementKeyPrefix+id, &def) {
		return &def, nil
	}
	found, err := c.Next.FindAchievement(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, util.CatalogAchievementKeyPrefix+id, found)
	return found, nil
}

func (c *CachedCatalog) ListActiveAchievements(ctx context.Context) ([]model.AchievementDefinition, error) {
	var defs []model.AchievementDefinition
	if c.get(ctx, util.CatalogAchievementListKey, &defs) {
		return defs, nil
	}
	defs, err := c.Next.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, util.CatalogAchievementListKey, defs)
	return defs, nil
}

func (c *CachedCatalog) FindQuest(ctx context.Context, id string) (*model.Quest, error) {
	var q model.Quest
	if c.get(ctx, util.CatalogQuestKeyPrefix+id, &q) {
		return &q, nil
	}
	found, err := c.Next.FindQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, util.CatalogQuestKeyPrefix+id, found)
	return found, nil
}

func (c *CachedCatalog) ListActiveQuests(ctx context.Context) ([]model.Quest, error) {
	var quests []model.Quest
	if c.get(ctx, util.CatalogQuestListKey, &quests) {
		return quests, nil
	}
	quests, err := c.Next.ListActiveQuests(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, util.CatalogQuestListKey, quests)
	return quests, nil
}

// Invalidate 删除目录缓存。不传 key 时清空全部目录缓存（列表与单条），
// 启动时迁移或重新种子后调用。
func (c *CachedCatalog) Invalidate(ctx context.Context, keys ...string) error {
	if c.Redis == nil {
		return nil
	}
	if len(keys) == 0 {
		iter := c.Redis.Scan(ctx, 0, util.CatalogKeyPattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
	}
	return c.Redis.Del(ctx, keys...).Err()
}

func (c *CachedCatalog) get(ctx context.Context, key string, dest interface{}) bool {
	if c.Redis == nil {
		return false
	}
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Log.Warn("catalog cache entry corrupted", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalog) set(ctx context.Context, key string, value interface{}) {
	if c.Redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
