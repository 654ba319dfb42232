package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// SavedPostService 收藏开关，重复收藏/取消是 BadRequest
type SavedPostService interface {
	Save(ctx context.Context, user *model.User, postID string) error
	Unsave(ctx context.Context, user *model.User, postID string) error
	SaveStatus(ctx context.Context, user *model.User, postID string) (bool, error)
}

type savedPostService struct {
	posts PostService
	saved repository.SavedPostRepository
}

func NewSavedPostService(posts PostService, saved repository.SavedPostRepository) SavedPostService {
	return &savedPostService{posts: posts, saved: saved}
}

func (s *savedPostService) SaveStatus(ctx context.Context, user *model.User, postID string) (bool, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return false, err
	}
	return s.saved.Exists(ctx, user.ID, postID)
}

func (s *savedPostService) Save(ctx context.Context, user *model.User, postID string) error {
	saved, err := s.SaveStatus(ctx, user, postID)
	if err != nil {
		return err
	}
	if saved {
		return fmt.Errorf("%w: already saved", ErrBadRequest)
	}
	return s.saved.Create(ctx, user.ID, postID)
}

func (s *savedPostService) Unsave(ctx context.Context, user *model.User, postID string) error {
	saved, err := s.SaveStatus(ctx, user, postID)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("%w: not saved", ErrBadRequest)
	}
	return s.saved.Delete(ctx, user.ID, postID)
}
