package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

type PostLikeRepository interface {
	WithTx(tx *gorm.DB) PostLikeRepository
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Create(ctx context.Context, userID, postID string) error
	Delete(ctx context.Context, userID, postID string) error
	CountForPost(ctx context.Context, postID string) (int64, error)
}

type postLikeRepository struct{ db *gorm.DB }

func NewPostLikeRepository(db *gorm.DB) PostLikeRepository { return &postLikeRepository{db: db} }

func (r *postLikeRepository) WithTx(tx *gorm.DB) PostLikeRepository {
	return &postLikeRepository{db: tx}
}

func (r *postLikeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *postLikeRepository) Create(ctx context.Context, userID, postID string) error {
	like := &model.PostLike{ID: uuid.New().String(), UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postLikeRepository) Delete(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.PostLike{}).Error
}

func (r *postLikeRepository) CountForPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

type CommentLikeRepository interface {
	WithTx(tx *gorm.DB) CommentLikeRepository
	Exists(ctx context.Context, userID, commentID string) (bool, error)
	Create(ctx context.Context, userID, commentID string) error
	Delete(ctx context.Context, userID, commentID string) error
	CountForComment(ctx context.Context, commentID string) (int64, error)
}

type commentLikeRepository struct{ db *gorm.DB }

func NewCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &commentLikeRepository{db: db}
}

func (r *commentLikeRepository) WithTx(tx *gorm.DB) CommentLikeRepository {
	return &commentLikeRepository{db: tx}
}

func (r *commentLikeRepository) Exists(ctx context.Context, userID, commentID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *commentLikeRepository) Create(ctx context.Context, userID, commentID string) error {
	like := &model.CommentLike{ID: uuid.New().String(), UserID: userID, CommentID: commentID}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *commentLikeRepository) Delete(ctx context.Context, userID, commentID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentLike{}).Error
}

func (r *commentLikeRepository) CountForComment(ctx context.Context, commentID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.CommentLike{}).Where("comment_id = ?", commentID).Count(&cnt).Error
	return cnt, err
}

type SavedPostRepository interface {
	WithTx(tx *gorm.DB) SavedPostRepository
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Create(ctx context.Context, userID, postID string) error
	Delete(ctx context.Context, userID, postID string) error
}

type savedPostRepository struct{ db *gorm.DB }

func NewSavedPostRepository(db *gorm.DB) SavedPostRepository {
	return &savedPostRepository{db: db}
}

func (r *savedPostRepository) WithTx(tx *gorm.DB) SavedPostRepository {
	return &savedPostRepository{db: tx}
}

func (r *savedPostRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *savedPostRepository) Create(ctx context.Context, userID, postID string) error {
	saved := &model.SavedPost{ID: uuid.New().String(), UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).Create(saved).Error
}

func (r *savedPostRepository) Delete(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.SavedPost{}).Error
}
