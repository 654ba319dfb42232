package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/model"
)

// activeMentionRecipients 某帖子未撤回 mention 通知的接收者用户名
func (e *testEnv) activeMentionRecipients(t *testing.T, postID string) map[string]string {
	t.Helper()
	var notifs []*model.Notification
	err := e.db.Preload("Recipient").
		Where("post_id = ? AND type = ?", postID, model.NotifMention).
		Find(&notifs).Error
	require.NoError(t, err)
	out := make(map[string]string, len(notifs))
	for _, n := range notifs {
		require.NotNil(t, n.Recipient)
		out[n.Recipient.Username] = n.ID
	}
	return out
}

func TestPostMentionsNotify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)
	carol := env.seedUser(t, "carol", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", []string{"bob", "carol"})
	require.NoError(t, err)

	require.EqualValues(t, 1, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifMention))
	require.EqualValues(t, 1, env.activeNotifCount(t, carol.ID, alice.ID, model.NotifMention))
	require.Len(t, env.activeMentionRecipients(t, post.ID), 2)
}

func TestPostUpdateMentionDiff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	env.seedUser(t, "bob", model.ProfilePublic)
	env.seedUser(t, "carol", model.ProfilePublic)
	env.seedUser(t, "dave", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", []string{"bob", "carol"})
	require.NoError(t, err)
	before := env.activeMentionRecipients(t, post.ID)

	// bob 移除、carol 保留、dave 新增
	_, err = env.postSvc.Update(ctx, alice, post.ID, "hello again", []string{"carol", "dave"})
	require.NoError(t, err)

	after := env.activeMentionRecipients(t, post.ID)
	require.Len(t, after, 2)
	require.NotContains(t, after, "bob")
	require.Contains(t, after, "dave")
	// 保留的 mention 不重发，通知行不变
	require.Equal(t, before["carol"], after["carol"])
}

func TestMentionUnknownUserSkipped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", []string{"nobody"})
	require.NoError(t, err)
	require.Empty(t, env.activeMentionRecipients(t, post.ID))
}

func TestMentionSelfSkipped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", []string{"alice"})
	require.NoError(t, err)
	require.Empty(t, env.activeMentionRecipients(t, post.ID))
}

func TestMentionBlockedUserRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	env.seedUser(t, "bob", model.ProfilePublic)

	require.NoError(t, env.relationSvc.Block(ctx, alice, "bob"))
	_, err := env.postSvc.Create(ctx, alice, "hello", []string{"bob"})
	require.ErrorIs(t, err, ErrBadRequest)

	// 反方向同样拒绝
	carol := env.seedUser(t, "carol", model.ProfilePublic)
	require.NoError(t, env.relationSvc.Block(ctx, carol, "alice"))
	_, err = env.postSvc.Create(ctx, alice, "hi", []string{"carol"})
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestLikeToggleRetractsNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)

	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post.ID))
	require.EqualValues(t, 1, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifLike))

	require.NoError(t, env.postLikeSvc.Unlike(ctx, bob, post.ID))
	require.EqualValues(t, 0, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifLike))

	// 重复点赞/取消是错误
	require.ErrorIs(t, env.postLikeSvc.Unlike(ctx, bob, post.ID), ErrBadRequest)
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post.ID))
	require.ErrorIs(t, env.postLikeSvc.Like(ctx, bob, post.ID), ErrBadRequest)
	require.EqualValues(t, 1, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifLike))

	got, err := env.postSvc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.LikeCount)
}

func TestSelfLikeNoNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, env.postLikeSvc.Like(ctx, alice, post.ID))

	require.EqualValues(t, 0, env.activeNotifCount(t, alice.ID, alice.ID, model.NotifLike))
	got, err := env.postSvc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.LikeCount)
}

func TestCommentNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)

	top, err := env.commentSvc.Create(ctx, bob, post.ID, "nice", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifComment))

	// 回复与自评都不通知
	_, err = env.commentSvc.Create(ctx, bob, post.ID, "reply", &top.ID)
	require.NoError(t, err)
	_, err = env.commentSvc.Create(ctx, alice, post.ID, "own post", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifComment))
	require.EqualValues(t, 0, env.activeNotifCount(t, alice.ID, alice.ID, model.NotifComment))

	got, err := env.postSvc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, got.CommentCount)
}

func TestFanoutToSenderFollowers(t *testing.T) {
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

	// 主接收者 alice 与次级接收者 carol 都有已读跟踪行
	var notif model.Notification
	require.NoError(t, env.db.Where("type = ?", model.NotifLike).First(&notif).Error)
	for _, id := range []string{alice.ID, carol.ID} {
		un, err := env.userNotifs.Find(ctx, id, notif.ID)
		require.NoError(t, err)
		require.NotNil(t, un)
	}

	// carol 的动态流里能看到，自己的主流里看不到
	feed, err := env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Data, 1)
	require.Equal(t, model.NotifLike, feed.Data[0].Type)
	require.Equal(t, "bob", feed.Data[0].SenderUsername)
	require.Equal(t, "alice", feed.Data[0].RecipientUsername)

	primary, err := env.notificationSvc.List(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Empty(t, primary.Data)

	// 取消赞后动态流同步消失
	require.NoError(t, env.postLikeSvc.Unlike(ctx, bob, post.ID))
	feed, err = env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Empty(t, feed.Data)
}

func TestFeedExcludesEdgesNewerThanNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)
	carol := env.seedUser(t, "carol", model.ProfilePublic)

	// 通知发生在 carol 关注 bob 之前，不进入 carol 的动态流
	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, env.postLikeSvc.Like(ctx, bob, post.ID))

	_, err = env.relationSvc.Follow(ctx, carol, "bob")
	require.NoError(t, err)

	feed, err := env.notificationSvc.FollowingsFeed(ctx, carol, 1, 10)
	require.NoError(t, err)
	require.Empty(t, feed.Data)
}
