package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
)

func TestListMarksRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)

	n, err := env.notificationSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// 首次拉取返回未读态并顺手置已读
	page, err := env.notificationSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.False(t, page.Data[0].IsRead)
	require.Equal(t, "bob", page.Data[0].SenderUsername)

	n, err = env.notificationSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	page, err = env.notificationSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.True(t, page.Data[0].IsRead)
}

func TestListAttachesFollowStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)

	page, err := env.notificationSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	// alice 不关注 bob，bob 关注 alice
	require.Equal(t, model.DisplayNotFollowed, page.Data[0].FollowStatus)
	require.Equal(t, model.DisplayFollowed, page.Data[0].ReverseFollowStatus)

	_, err = env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	page, err = env.notificationSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Equal(t, model.DisplayFollowed, page.Data[0].FollowStatus)
}

func TestUnreadCountsExcludeOwnActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)
	carol := env.seedUser(t, "carol", model.ProfilePublic)

	// carol 关注 bob；bob 给 alice 的帖子点赞
	_, err := env.relationSvc.Follow(ctx, carol, "bob")
	require.NoError(t, err)
	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post.ID))

	// alice 是直接接收者：主流未读 1，动态流未读 0
	n, err := env.notificationSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = env.notificationSvc.UnreadFollowingsCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	// carol 是旁观粉丝：主流 0，动态流 1
	n, err = env.notificationSvc.UnreadCount(ctx, carol)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
	n, err = env.notificationSvc.UnreadFollowingsCount(ctx, carol)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// 动态流拉取后未读归零
	_, err = env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	n, err = env.notificationSvc.UnreadFollowingsCount(ctx, carol)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	// 取关后旧通知退出动态流，未读计数同步清零
	require.NoError(t, env.postLikeSvc.Unlike(ctx, bob, post.ID))
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post.ID))
	n, err = env.notificationSvc.UnreadFollowingsCount(ctx, carol)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, env.relationSvc.Unfollow(ctx, carol, "bob"))
	feed, err := env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Empty(t, feed.Data)
	n, err = env.notificationSvc.UnreadFollowingsCount(ctx, carol)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

// 分页 total 与可翻到的条目同口径：缺少已读跟踪行的通知两边都不计
func TestFeedTotalMatchesVisibleItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)
	carol := env.seedUser(t, "carol", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, carol, "bob")
	require.NoError(t, err)
	post1, err := env.postSvc.Create(ctx, alice, "first", nil)
	require.NoError(t, err)
	post2, err := env.postSvc.Create(ctx, alice, "second", nil)
	require.NoError(t, err)
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post1.ID))
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post2.ID))

	page, err := env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.EqualValues(t, 2, page.Meta.Total)

	// 丢失一条跟踪行后，条目与 total 一起少一
	res := env.db.Where("user_id = ? AND notification_id = ?", carol.ID, page.Data[0].ID).
		Delete(&model.UserNotification{})
	require.NoError(t, res.Error)
	require.EqualValues(t, 1, res.RowsAffected)

	page, err = env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.EqualValues(t, 1, page.Meta.Total)
}

func TestRetractionDropsUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)
	n, err := env.notificationSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// 取关撤回通知，未读同步消失
	require.NoError(t, env.relationSvc.Unfollow(ctx, bob, "alice"))
	n, err = env.notificationSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	page, err := env.notificationSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Empty(t, page.Data)
}

// 缓存接入后计数读旁路、写失效
func TestUnreadCountCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	unread := cache.NewUnreadCache(rdb, time.Minute)
	cachedSvc := NewNotificationService(env.notifs, env.userNotifs, env.relations, unread)

	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)

	// 第一次回源，第二次命中缓存
	n, err := cachedSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	cached, ok := unread.GetPrimary(ctx, alice.ID)
	require.True(t, ok)
	require.EqualValues(t, 1, cached)

	// 拉取列表置已读并失效缓存
	_, err = cachedSvc.List(ctx, alice, 1, 10)
	require.NoError(t, err)
	_, ok = unread.GetPrimary(ctx, alice.ID)
	require.False(t, ok)

	n, err = cachedSvc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
