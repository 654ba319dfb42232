package model

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotifFollowed        NotificationType = "followed"
	NotifFollowRequest   NotificationType = "followRequest"
	NotifRequestAccepted NotificationType = "requestAccepted"
	NotifLike            NotificationType = "like"
	NotifComment         NotificationType = "comment"
	NotifMention         NotificationType = "mention"
)

// FeedTypes 关注动态流（以及对应未读数）可见的通知类型
var FeedTypes = []NotificationType{NotifLike, NotifComment, NotifFollowed}

// Notification 通知事件本体。
// 同一 (recipient, sender, type[, post]) 键任意时刻至多一条未删除行，
// 触发动作被撤销（取关/取消赞/拒绝/拉黑）时软删。
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)"`
	RecipientID string           `gorm:"type:varchar(36);index:idx_notif_recipient;not null"`
	SenderID    string           `gorm:"type:varchar(36);index:idx_notif_sender;not null"`
	Type        NotificationType `gorm:"type:varchar(20);not null"`
	PostID      *string          `gorm:"type:varchar(36);index"`
	CommentID   *string          `gorm:"type:varchar(36)"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Recipient *User `gorm:"foreignKey:RecipientID"`
	Sender    *User `gorm:"foreignKey:SenderID"`
}

func (Notification) TableName() string { return "notifications" }

// UserNotification 每个可见用户一条已读跟踪行（主接收者 + 发送者的粉丝），
// 各自独立标记已读。父通知软删后读路径不再返回，行本身不删。
type UserNotification struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	UserID         string `gorm:"type:varchar(36);index:idx_user_notif_pair;not null"`
	NotificationID string `gorm:"type:varchar(36);index:idx_user_notif_pair;not null"`
	IsRead         bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time

	Notification *Notification `gorm:"foreignKey:NotificationID"`
}

func (UserNotification) TableName() string { return "user_notifications" }
