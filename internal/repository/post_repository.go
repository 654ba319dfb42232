package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *model.Post) error
	Get(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	SetLikeCount(ctx context.Context, postID string, count int64) error
	SetCommentCount(ctx context.Context, postID string, count int64) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository { return &postRepository{db: tx} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) SetLikeCount(ctx context.Context, postID string, count int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", postID).
		Update("like_count", count).Error
}

func (r *postRepository) SetCommentCount(ctx context.Context, postID string, count int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", postID).
		Update("comment_count", count).Error
}

func (r *postRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
