package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/pkg/jwt"
)

func newUserService(env *testEnv) UserService {
	jwtSvc := jwt.NewService(config.JWTConfig{
		Secret: "test-secret",
		Issuer: "test",
		Expire: time.Hour,
	})
	return NewUserService(env.users, jwtSvc)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret-password")
	require.NoError(t, err)
	require.Equal(t, model.ProfilePublic, user.ProfileStatus)
	require.NotEqual(t, "secret-password", user.Password)

	// 用户名占用
	_, err = svc.Register(ctx, "alice", "other@example.com", "another-password")
	require.ErrorIs(t, err, ErrBadRequest)

	token, logged, err := svc.Login(ctx, "alice", "secret-password")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, logged.ID)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.Login(ctx, "ghost", "whatever")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSetProfileStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "", "secret-password")
	require.NoError(t, err)

	require.NoError(t, svc.SetProfileStatus(ctx, user, model.ProfilePrivate))
	require.Equal(t, model.ProfilePrivate, env.reload(t, user.ID).ProfileStatus)

	require.ErrorIs(t, svc.SetProfileStatus(ctx, user, "friends-only"), ErrBadRequest)
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	ctx := context.Background()

	_, err := svc.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByID(ctx, "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}
