package model

import (
	"time"

	"gorm.io/gorm"
)

// Comment 评论；ParentID 非空表示对评论的回复
type Comment struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	PostID    string  `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	UserID    string  `gorm:"type:varchar(36);not null"`
	Text      string  `gorm:"type:text;not null"`
	ParentID  *string `gorm:"type:varchar(36);index:idx_comment_parent"`
	LikeCount int64   `gorm:"not null;default:0"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	User *User `gorm:"foreignKey:UserID"`
	Post *Post `gorm:"foreignKey:PostID"`
}

func (Comment) TableName() string { return "comments" }
