package model

import (
	"time"

	"gorm.io/gorm"
)

// PostLike 帖子点赞，软删支持反复点赞/取消
type PostLike struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_post_like_pair;not null"`
	PostID    string `gorm:"type:varchar(36);index:idx_post_like_pair;not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PostLike) TableName() string { return "post_likes" }

// CommentLike 评论点赞
type CommentLike struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_comment_like_pair;not null"`
	CommentID string `gorm:"type:varchar(36);index:idx_comment_like_pair;not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CommentLike) TableName() string { return "comment_likes" }

// SavedPost 收藏
type SavedPost struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_saved_post_pair;not null"`
	PostID    string `gorm:"type:varchar(36);index:idx_saved_post_pair;not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SavedPost) TableName() string { return "saved_posts" }
