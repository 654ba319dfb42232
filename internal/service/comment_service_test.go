package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/internal/model"
)

func TestCommentTreeListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)

	top1, err := env.commentSvc.Create(ctx, bob, post.ID, "first", nil)
	require.NoError(t, err)
	top2, err := env.commentSvc.Create(ctx, alice, post.ID, "second", nil)
	require.NoError(t, err)
	reply, err := env.commentSvc.Create(ctx, alice, post.ID, "reply", &top1.ID)
	require.NoError(t, err)
	_, err = env.commentSvc.Create(ctx, bob, post.ID, "nested", &reply.ID)
	require.NoError(t, err)

	page, err := env.commentSvc.List(ctx, post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.EqualValues(t, 2, page.Meta.Total)

	// 一级评论新的在前
	require.Equal(t, top2.ID, page.Data[0].ID)
	require.Equal(t, top1.ID, page.Data[1].ID)
	require.Len(t, page.Data[1].Replies, 1)
	require.Len(t, page.Data[1].Replies[0].Replies, 1)
	require.Equal(t, "nested", page.Data[1].Replies[0].Replies[0].Text)
}

func TestCommentParentMustMatchPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)

	post1, err := env.postSvc.Create(ctx, alice, "one", nil)
	require.NoError(t, err)
	post2, err := env.postSvc.Create(ctx, alice, "two", nil)
	require.NoError(t, err)

	parent, err := env.commentSvc.Create(ctx, alice, post1.ID, "top", nil)
	require.NoError(t, err)

	_, err = env.commentSvc.Create(ctx, alice, post2.ID, "cross", &parent.ID)
	require.ErrorIs(t, err, ErrBadRequest)

	missing := "no-such-comment"
	_, err = env.commentSvc.Create(ctx, alice, post1.ID, "orphan", &missing)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSavedPostToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)

	require.NoError(t, env.savedSvc.Save(ctx, bob, post.ID))
	saved, err := env.savedSvc.SaveStatus(ctx, bob, post.ID)
	require.NoError(t, err)
	require.True(t, saved)

	require.ErrorIs(t, env.savedSvc.Save(ctx, bob, post.ID), ErrBadRequest)
	require.NoError(t, env.savedSvc.Unsave(ctx, bob, post.ID))
	require.ErrorIs(t, env.savedSvc.Unsave(ctx, bob, post.ID), ErrBadRequest)
}

func TestPostUpdateOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", model.ProfilePublic)
	bob := env.seedUser(t, "bob", model.ProfilePublic)

	post, err := env.postSvc.Create(ctx, alice, "hello", nil)
	require.NoError(t, err)

	_, err = env.postSvc.Update(ctx, bob, post.ID, "hijack", nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.postSvc.Update(ctx, alice, "missing", "edit", nil)
	require.ErrorIs(t, err, ErrNotFound)
}
