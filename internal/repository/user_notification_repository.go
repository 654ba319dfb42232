package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// UserNotificationRepository 每个可见用户的已读跟踪行
type UserNotificationRepository interface {
	WithTx(tx *gorm.DB) UserNotificationRepository
	Create(ctx context.Context, userID, notificationID string) error
	Find(ctx context.Context, userID, notificationID string) (*model.UserNotification, error)
	// SetRead 幂等置已读
	SetRead(ctx context.Context, userID, notificationID string) error
	// UnreadPrimaryCount 主流未读数：viewer 即通知接收者的未读行
	UnreadPrimaryCount(ctx context.Context, userID string) (int64, error)
	// UnreadFollowingsCount 动态流未读数：限当前有效关注边内，viewer 既非接收者也非发送者、类型限 FeedTypes
	UnreadFollowingsCount(ctx context.Context, userID string) (int64, error)
}

type userNotificationRepository struct{ db *gorm.DB }

func NewUserNotificationRepository(db *gorm.DB) UserNotificationRepository {
	return &userNotificationRepository{db: db}
}

func (r *userNotificationRepository) WithTx(tx *gorm.DB) UserNotificationRepository {
	return &userNotificationRepository{db: tx}
}

func (r *userNotificationRepository) Create(ctx context.Context, userID, notificationID string) error {
	un := &model.UserNotification{
		ID:             uuid.New().String(),
		UserID:         userID,
		NotificationID: notificationID,
	}
	return r.db.WithContext(ctx).Create(un).Error
}

func (r *userNotificationRepository) Find(ctx context.Context, userID, notificationID string) (*model.UserNotification, error) {
	var un model.UserNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		First(&un).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &un, nil
}

func (r *userNotificationRepository) SetRead(ctx context.Context, userID, notificationID string) error {
	return r.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Update("is_read", true).Error
}

func (r *userNotificationRepository) UnreadPrimaryCount(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.UserNotification{}).
		Joins("JOIN notifications ON notifications.id = user_notifications.notification_id AND notifications.deleted_at IS NULL").
		Where("user_notifications.user_id = ? AND user_notifications.is_read = ?", userID, false).
		Where("notifications.recipient_id = ?", userID).
		Count(&cnt).Error
	return cnt, err
}

func (r *userNotificationRepository) UnreadFollowingsCount(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.UserNotification{}).
		Joins("JOIN notifications ON notifications.id = user_notifications.notification_id AND notifications.deleted_at IS NULL").
		Joins("JOIN relations ON relations.following_id = notifications.sender_id"+
			" AND relations.follower_id = ?"+
			" AND relations.deleted_at IS NULL"+
			" AND relations.created_at < notifications.created_at", userID).
		Where("relations.status IN ?", model.ActiveStatuses).
		Where("user_notifications.user_id = ? AND user_notifications.is_read = ?", userID, false).
		Where("notifications.recipient_id <> ?", userID).
		Where("notifications.sender_id <> ?", userID).
		Where("notifications.type IN ?", model.FeedTypes).
		Count(&cnt).Error
	return cnt, err
}
