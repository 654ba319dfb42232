package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/pkg/logger"
)

// UnreadCache 未读计数的旁路缓存，未命中回源数据库
type UnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUnreadCache(rdb *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UnreadCache{rdb: rdb, ttl: ttl}
}

func primaryKey(userID string) string {
	return fmt.Sprintf("unread:%s", userID)
}

func followingsKey(userID string) string {
	return fmt.Sprintf("unread:followings:%s", userID)
}

func (c *UnreadCache) get(ctx context.Context, key string) (int64, bool) {
	n, err := c.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("unread cache get failed", zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}
	return n, true
}

func (c *UnreadCache) set(ctx context.Context, key string, n int64) {
	if err := c.rdb.Set(ctx, key, n, c.ttl).Err(); err != nil {
		logger.L().Warn("unread cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *UnreadCache) GetPrimary(ctx context.Context, userID string) (int64, bool) {
	return c.get(ctx, primaryKey(userID))
}

func (c *UnreadCache) SetPrimary(ctx context.Context, userID string, n int64) {
	c.set(ctx, primaryKey(userID), n)
}

func (c *UnreadCache) GetFollowings(ctx context.Context, userID string) (int64, bool) {
	return c.get(ctx, followingsKey(userID))
}

func (c *UnreadCache) SetFollowings(ctx context.Context, userID string, n int64) {
	c.set(ctx, followingsKey(userID), n)
}

// Invalidate 相关用户的两类计数一起失效
func (c *UnreadCache) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		keys = append(keys, primaryKey(id), followingsKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.L().Warn("unread cache invalidate failed", zap.Error(err))
	}
}
