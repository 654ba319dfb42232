package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/database"
)

type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	relations  repository.RelationRepository
	notifs     repository.NotificationRepository
	userNotifs repository.UserNotificationRepository

	relationSvc     RelationService
	notificationSvc NotificationService
	postSvc         PostService
	postLikeSvc     PostLikeService
	commentSvc      CommentService
	savedSvc        SavedPostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	relations := repository.NewRelationRepository(db)
	notifs := repository.NewNotificationRepository(db)
	userNotifs := repository.NewUserNotificationRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	postLikes := repository.NewPostLikeRepository(db)
	savedPosts := repository.NewSavedPostRepository(db)

	fanout := NewFanout(relations, userNotifs, nil)
	notifier := NewNotifier(notifs, users, relations, fanout)
	events := NewDispatcher()
	events.Register(notifier.Handle)

	postSvc := NewPostService(db, posts, users, relations, events)
	return &testEnv{
		db:              db,
		users:           users,
		relations:       relations,
		notifs:          notifs,
		userNotifs:      userNotifs,
		relationSvc:     NewRelationService(db, users, relations, events),
		notificationSvc: NewNotificationService(notifs, userNotifs, relations, nil),
		postSvc:         postSvc,
		postLikeSvc:     NewPostLikeService(db, postSvc, postLikes, posts, events),
		commentSvc:      NewCommentService(db, postSvc, comments, posts, events),
		savedSvc:        NewSavedPostService(postSvc, savedPosts),
	}
}

func (e *testEnv) seedUser(t *testing.T, username, profileStatus string) *model.User {
	t.Helper()
	u := &model.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         username + "@example.com",
		Password:      "hash",
		ProfileStatus: profileStatus,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) reload(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

// activeNotifCount 未软删的通知数
func (e *testEnv) activeNotifCount(t *testing.T, recipientID, senderID string, typ model.NotificationType) int64 {
	t.Helper()
	var cnt int64
	err := e.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, typ).
		Count(&cnt).Error
	require.NoError(t, err)
	return cnt
}

func TestFollowPublicProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	status, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusFollowed, status)

	require.EqualValues(t, 1, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))
	require.EqualValues(t, 1, env.reload(t, bob.ID).FollowerCount)
	require.EqualValues(t, 1, env.reload(t, alice.ID).FollowingCount)
}

func TestFollowSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.ProfilePublic)

	_, err := env.relationSvc.Follow(context.Background(), alice, "alice")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestDoubleFollowRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = env.relationSvc.Follow(ctx, alice, "bob")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestFollowPrivateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePrivate)

	status, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusRequestPending, status)

	// 挂起请求不计入粉丝
	require.EqualValues(t, 0, env.reload(t, bob.ID).FollowerCount)
	require.EqualValues(t, 1, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowRequest))
}

func TestAcceptRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePrivate)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.AcceptRequest(ctx, bob, "alice"))

	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusRequestAccepted, status)

	// 请求通知撤回，双方各恰好一条新通知
	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowRequest))
	require.EqualValues(t, 1, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifRequestAccepted))
	require.EqualValues(t, 1, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))

	require.EqualValues(t, 1, env.reload(t, bob.ID).FollowerCount)
	require.EqualValues(t, 1, env.reload(t, alice.ID).FollowingCount)
}

func TestRejectRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePrivate)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.RejectRequest(ctx, bob, "alice"))

	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowRequest))

	// 被拒后可以重新发起
	status, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusRequestPending, status)
}

func TestRescindRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePrivate)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.Unfollow(ctx, alice, "bob"))

	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusRequestRescinded, status)
	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowRequest))
}

func TestUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.Unfollow(ctx, alice, "bob"))

	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))
	require.EqualValues(t, 0, env.reload(t, bob.ID).FollowerCount)
	require.EqualValues(t, 0, env.reload(t, alice.ID).FollowingCount)

	// 不在关注中再取关是错误
	require.ErrorIs(t, env.relationSvc.Unfollow(ctx, alice, "bob"), ErrBadRequest)
}

func TestDeleteFollower(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.DeleteFollower(ctx, bob, "alice"))

	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusFollowerDeleted, status)
	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))
	require.EqualValues(t, 0, env.reload(t, bob.ID).FollowerCount)

	// 被移除后可以重新关注
	_, err = env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
}

func TestBlockClearsBothDirections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	// 互相关注后 alice 拉黑 bob
	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)

	require.NoError(t, env.relationSvc.Block(ctx, alice, "bob"))

	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusBlocked, status)
	// 反向边被清掉
	status, err = env.relationSvc.GetStatus(ctx, bob, "alice")
	require.NoError(t, err)
	require.Equal(t, model.StatusNotFollowed, status)

	// 两个方向的 followed 通知都撤回
	require.EqualValues(t, 0, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))
	require.EqualValues(t, 0, env.activeNotifCount(t, alice.ID, bob.ID, model.NotifFollowed))

	// 被拉黑方不能发起关注
	_, err = env.relationSvc.Follow(ctx, bob, "alice")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestUnblockAllowsRefollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	require.NoError(t, env.relationSvc.Block(ctx, alice, "bob"))
	require.NoError(t, env.relationSvc.Unblock(ctx, alice, "bob"))

	// 解除拉黑不恢复旧状态
	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusUnblocked, status)

	_, err = env.relationSvc.Follow(ctx, bob, "alice")
	require.NoError(t, err)
	_, err = env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)

	// 再次解除是错误
	require.ErrorIs(t, env.relationSvc.Unblock(ctx, alice, "bob"), ErrBadRequest)
}

func TestCloseFriendRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	// 只有现任粉丝能成为密友
	require.ErrorIs(t, env.relationSvc.AddCloseFriend(ctx, bob, "alice"), ErrBadRequest)

	_, err := env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)
	require.NoError(t, env.relationSvc.AddCloseFriend(ctx, bob, "alice"))

	status, err := env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusClose, status)
	// close 仍是活跃关注
	require.EqualValues(t, 1, env.reload(t, bob.ID).FollowerCount)

	require.NoError(t, env.relationSvc.RemoveCloseFriend(ctx, bob, "alice"))
	status, err = env.relationSvc.GetStatus(ctx, alice, "bob")
	require.NoError(t, err)
	require.Equal(t, model.StatusFollowed, status)

	// 降级不补发新关注通知
	require.EqualValues(t, 1, env.activeNotifCount(t, bob.ID, alice.ID, model.NotifFollowed))
}

func TestFollowerListStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)
	carol := env.seedUser(t, "carol", model.ProfilePublic)

	_, err := env.relationSvc.Follow(ctx, alice, carol.Username)
	require.NoError(t, err)
	_, err = env.relationSvc.Follow(ctx, bob, carol.Username)
	require.NoError(t, err)
	_, err = env.relationSvc.Follow(ctx, alice, "bob")
	require.NoError(t, err)

	page, err := env.relationSvc.FollowerList(ctx, alice, carol.Username, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.EqualValues(t, 2, page.Meta.Total)

	byName := make(map[string]RelationUser, len(page.Data))
	for _, u := range page.Data {
		byName[u.Username] = u
	}
	require.Equal(t, model.DisplayFollowed, byName["bob"].FollowStatus)
	require.Equal(t, model.DisplayNotFollowed, byName["bob"].ReverseFollowStatus)
}
