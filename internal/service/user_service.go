package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/jwt"
)

// UserService 注册登录与资料查询
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetProfileStatus(ctx context.Context, user *model.User, status string) error
}

type userService struct {
	users repository.UserRepository
	jwt   *jwt.Service
}

func NewUserService(users repository.UserRepository, jwtSvc *jwt.Service) UserService {
	return &userService{users: users, jwt: jwtSvc}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username taken", ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		Password:      string(hash),
		ProfileStatus: model.ProfilePublic,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, fmt.Errorf("%w: bad credentials", ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: bad credentials", ErrForbidden)
	}
	token, err := s.jwt.Generate(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	return user, nil
}

// SetProfileStatus 公开/私密切换，私密转公开不补发历史请求
func (s *userService) SetProfileStatus(ctx context.Context, user *model.User, status string) error {
	if status != model.ProfilePublic && status != model.ProfilePrivate {
		return fmt.Errorf("%w: invalid profile status %q", ErrBadRequest, status)
	}
	user.ProfileStatus = status
	return s.users.Update(ctx, user)
}
