package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// NotificationKey 通知的自然键 (recipient, sender, type[, post])
type NotificationKey struct {
	RecipientID string
	SenderID    string
	Type        model.NotificationType
	PostID      *string
}

// NotificationRepository 通知仓储。
// Create 先按自然键撤回再插入，保证同键至多一条未删除行。
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(ctx context.Context, notif *model.Notification) (*model.Notification, error)
	Retract(ctx context.Context, key NotificationKey) error
	RetractByID(ctx context.Context, id string) error
	// ActiveMentions 某帖子当前未撤回的 mention 通知（含接收者）
	ActiveMentions(ctx context.Context, postID string) ([]*model.Notification, error)
	// ListByRecipient 主通知流，按时间倒序分页。
	// 只返回 viewer 持有已读跟踪行的通知，total 同口径
	ListByRecipient(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, int64, error)
	// FeedByViewer 关注动态流：sender 是 viewer 的活跃关注对象、
	// 关注边早于通知、接收者与发送者都不是 viewer、类型限 FeedTypes。
	// 同样要求 viewer 持有已读跟踪行，total 同口径
	FeedByViewer(ctx context.Context, viewerID string, offset, limit int) ([]*model.Notification, int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, notif *model.Notification) (*model.Notification, error) {
	key := NotificationKey{
		RecipientID: notif.RecipientID,
		SenderID:    notif.SenderID,
		Type:        notif.Type,
		PostID:      notif.PostID,
	}
	if err := r.Retract(ctx, key); err != nil {
		return nil, err
	}
	if notif.ID == "" {
		notif.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(notif).Error; err != nil {
		return nil, err
	}
	return notif, nil
}

func (r *notificationRepository) Retract(ctx context.Context, key NotificationKey) error {
	q := r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", key.RecipientID, key.SenderID, key.Type)
	if key.PostID != nil {
		q = q.Where("post_id = ?", *key.PostID)
	}
	return q.Delete(&model.Notification{}).Error
}

func (r *notificationRepository) RetractByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Notification{}).Error
}

func (r *notificationRepository) ActiveMentions(ctx context.Context, postID string) ([]*model.Notification, error) {
	var notifs []*model.Notification
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND type = ?", postID, model.NotifMention).
		Preload("Recipient").
		Find(&notifs).Error
	return notifs, err
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM user_notifications"+
			" WHERE user_notifications.notification_id = notifications.id"+
			" AND user_notifications.user_id = ?)", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var notifs []*model.Notification
	err := q.Preload("Sender").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifs).Error
	return notifs, total, err
}

func (r *notificationRepository) FeedByViewer(ctx context.Context, viewerID string, offset, limit int) ([]*model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).
		Joins("JOIN relations ON relations.following_id = notifications.sender_id"+
			" AND relations.follower_id = ?"+
			" AND relations.deleted_at IS NULL"+
			" AND relations.created_at < notifications.created_at", viewerID).
		Where("relations.status IN ?", model.ActiveStatuses).
		Where("notifications.recipient_id <> ?", viewerID).
		Where("notifications.sender_id <> ?", viewerID).
		Where("notifications.type IN ?", model.FeedTypes).
		Where("EXISTS (SELECT 1 FROM user_notifications"+
			" WHERE user_notifications.notification_id = notifications.id"+
			" AND user_notifications.user_id = ?)", viewerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var notifs []*model.Notification
	err := q.Preload("Sender").Preload("Recipient").
		Order("notifications.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifs).Error
	return notifs, total, err
}
