package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*UnreadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewUnreadCache(rdb, time.Minute), mr
}

func TestUnreadCacheRoundtrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetPrimary(ctx, "u1")
	require.False(t, ok)

	c.SetPrimary(ctx, "u1", 3)
	n, ok := c.GetPrimary(ctx, "u1")
	require.True(t, ok)
	require.EqualValues(t, 3, n)

	c.SetFollowings(ctx, "u1", 7)
	n, ok = c.GetFollowings(ctx, "u1")
	require.True(t, ok)
	require.EqualValues(t, 7, n)
}

func TestUnreadCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetPrimary(ctx, "u1", 1)
	c.SetFollowings(ctx, "u1", 2)
	c.SetPrimary(ctx, "u2", 5)

	c.Invalidate(ctx, "u1")

	_, ok := c.GetPrimary(ctx, "u1")
	require.False(t, ok)
	_, ok = c.GetFollowings(ctx, "u1")
	require.False(t, ok)
	// 其它用户不受影响
	n, ok := c.GetPrimary(ctx, "u2")
	require.True(t, ok)
	require.EqualValues(t, 5, n)
}

func TestUnreadCacheTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetPrimary(ctx, "u1", 4)
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetPrimary(ctx, "u1")
	require.False(t, ok)
}
