package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// RelationRepository 关系边仓储。
// 迁移原语：软删该有向对的现存行后插入新行，历史只增不改。
type RelationRepository interface {
	WithTx(tx *gorm.DB) RelationRepository
	// Current 有向对当前状态行；无未删除行返回 (nil, nil)
	Current(ctx context.Context, followerID, followingID string) (*model.Relation, error)
	// Transition 软删旧行并插入 status 新行
	Transition(ctx context.Context, followerID, followingID string, status model.RelationStatus) (*model.Relation, error)
	// DeletePair 仅软删该有向对的现存行（拉黑时清反向边用）
	DeletePair(ctx context.Context, followerID, followingID string) error
	ActiveFollowers(ctx context.Context, userID string) ([]*model.Relation, error)
	ActiveFollowings(ctx context.Context, userID string) ([]*model.Relation, error)
	FollowersPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error)
	FollowingsPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error)
	CloseFriendsPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error)
	BlockedPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowings(ctx context.Context, userID string) (int64, error)
}

type relationRepository struct{ db *gorm.DB }

func NewRelationRepository(db *gorm.DB) RelationRepository { return &relationRepository{db: db} }

func (r *relationRepository) WithTx(tx *gorm.DB) RelationRepository {
	return &relationRepository{db: tx}
}

func (r *relationRepository) Current(ctx context.Context, followerID, followingID string) (*model.Relation, error) {
	var rel model.Relation
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Order("created_at DESC").
		First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *relationRepository) Transition(ctx context.Context, followerID, followingID string, status model.RelationStatus) (*model.Relation, error) {
	if err := r.DeletePair(ctx, followerID, followingID); err != nil {
		return nil, err
	}
	rel := &model.Relation{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      status,
	}
	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *relationRepository) DeletePair(ctx context.Context, followerID, followingID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Relation{}).Error
}

func (r *relationRepository) ActiveFollowers(ctx context.Context, userID string) ([]*model.Relation, error) {
	var rels []*model.Relation
	err := r.db.WithContext(ctx).
		Where("following_id = ? AND status IN ?", userID, model.ActiveStatuses).
		Find(&rels).Error
	return rels, err
}

func (r *relationRepository) ActiveFollowings(ctx context.Context, userID string) ([]*model.Relation, error) {
	var rels []*model.Relation
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND status IN ?", userID, model.ActiveStatuses).
		Find(&rels).Error
	return rels, err
}

func (r *relationRepository) FollowersPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error) {
	return r.page(ctx, "following_id = ? AND status IN ?", []interface{}{userID, model.ActiveStatuses}, "Follower", offset, limit)
}

func (r *relationRepository) FollowingsPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error) {
	return r.page(ctx, "follower_id = ? AND status IN ?", []interface{}{userID, model.ActiveStatuses}, "Following", offset, limit)
}

func (r *relationRepository) CloseFriendsPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error) {
	return r.page(ctx, "following_id = ? AND status = ?", []interface{}{userID, model.StatusClose}, "Follower", offset, limit)
}

func (r *relationRepository) BlockedPage(ctx context.Context, userID string, offset, limit int) ([]*model.Relation, int64, error) {
	return r.page(ctx, "follower_id = ? AND status = ?", []interface{}{userID, model.StatusBlocked}, "Following", offset, limit)
}

func (r *relationRepository) page(ctx context.Context, cond string, args []interface{}, preload string, offset, limit int) ([]*model.Relation, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Relation{}).Where(cond, args...)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rels []*model.Relation
	err := q.Preload(preload).Offset(offset).Limit(limit).Order("created_at DESC").Find(&rels).Error
	return rels, total, err
}

func (r *relationRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Relation{}).
		Where("following_id = ? AND status IN ?", userID, model.ActiveStatuses).
		Count(&cnt).Error
	return cnt, err
}

func (r *relationRepository) CountFollowings(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Relation{}).
		Where("follower_id = ? AND status IN ?", userID, model.ActiveStatuses).
		Count(&cnt).Error
	return cnt, err
}
