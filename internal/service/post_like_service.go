package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// PostLikeService 点赞开关；重复点赞/取消是 BadRequest
type PostLikeService interface {
	Like(ctx context.Context, user *model.User, postID string) error
	Unlike(ctx context.Context, user *model.User, postID string) error
	LikeStatus(ctx context.Context, user *model.User, postID string) (bool, error)
}

type postLikeService struct {
	db     *gorm.DB
	posts  PostService
	likes  repository.PostLikeRepository
	prepo  repository.PostRepository
	events *Dispatcher
}

func NewPostLikeService(db *gorm.DB, posts PostService, likes repository.PostLikeRepository, prepo repository.PostRepository, events *Dispatcher) PostLikeService {
	return &postLikeService{db: db, posts: posts, likes: likes, prepo: prepo, events: events}
}

func (s *postLikeService) LikeStatus(ctx context.Context, user *model.User, postID string) (bool, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return false, err
	}
	return s.likes.Exists(ctx, user.ID, postID)
}

func (s *postLikeService) Like(ctx context.Context, user *model.User, postID string) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	liked, err := s.likes.Exists(ctx, user.ID, postID)
	if err != nil {
		return err
	}
	if liked {
		return fmt.Errorf("%w: already liked", ErrBadRequest)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)
		if err := likes.Create(ctx, user.ID, postID); err != nil {
			return err
		}
		if err := s.recount(ctx, tx, postID); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, PostLiked{Post: post, Liker: user})
	})
}

func (s *postLikeService) Unlike(ctx context.Context, user *model.User, postID string) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	liked, err := s.likes.Exists(ctx, user.ID, postID)
	if err != nil {
		return err
	}
	if !liked {
		return fmt.Errorf("%w: not liked", ErrBadRequest)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)
		if err := likes.Delete(ctx, user.ID, postID); err != nil {
			return err
		}
		if err := s.recount(ctx, tx, postID); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, PostUnliked{Post: post, Liker: user})
	})
}

func (s *postLikeService) recount(ctx context.Context, tx *gorm.DB, postID string) error {
	count, err := s.likes.WithTx(tx).CountForPost(ctx, postID)
	if err != nil {
		return err
	}
	return s.prepo.WithTx(tx).SetLikeCount(ctx, postID, count)
}
