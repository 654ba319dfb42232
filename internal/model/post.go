package model

import (
	"time"

	"gorm.io/gorm"
)

// Post 内容主体；Mentions 为 caption 中 @ 的用户名列表
type Post struct {
	ID           string   `gorm:"primaryKey;type:varchar(36)"`
	UserID       string   `gorm:"type:varchar(36);index:idx_post_user;not null"`
	Caption      string   `gorm:"type:text"`
	Mentions     []string `gorm:"serializer:json;type:text"`
	LikeCount    int64    `gorm:"not null;default:0"`
	CommentCount int64    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	User *User `gorm:"foreignKey:UserID"`
}

func (Post) TableName() string { return "posts" }
