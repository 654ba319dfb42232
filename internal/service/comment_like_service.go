package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// CommentLikeService 评论点赞开关，不产出通知
type CommentLikeService interface {
	Like(ctx context.Context, user *model.User, commentID string) error
	Unlike(ctx context.Context, user *model.User, commentID string) error
}

type commentLikeService struct {
	db       *gorm.DB
	comments repository.CommentRepository
	likes    repository.CommentLikeRepository
}

func NewCommentLikeService(db *gorm.DB, comments repository.CommentRepository, likes repository.CommentLikeRepository) CommentLikeService {
	return &commentLikeService{db: db, comments: comments, likes: likes}
}

func (s *commentLikeService) Like(ctx context.Context, user *model.User, commentID string) error {
	return s.toggle(ctx, user, commentID, true)
}

func (s *commentLikeService) Unlike(ctx context.Context, user *model.User, commentID string) error {
	return s.toggle(ctx, user, commentID, false)
}

func (s *commentLikeService) toggle(ctx context.Context, user *model.User, commentID string, like bool) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("%w: comment %q", ErrNotFound, commentID)
	}
	liked, err := s.likes.Exists(ctx, user.ID, commentID)
	if err != nil {
		return err
	}
	if liked == like {
		return fmt.Errorf("%w: like status already %v", ErrBadRequest, like)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)
		if like {
			if err := likes.Create(ctx, user.ID, commentID); err != nil {
				return err
			}
		} else {
			if err := likes.Delete(ctx, user.ID, commentID); err != nil {
				return err
			}
		}
		count, err := likes.CountForComment(ctx, commentID)
		if err != nil {
			return err
		}
		return s.comments.WithTx(tx).SetLikeCount(ctx, commentID, count)
	})
}
