package model

import "time"

// 资料可见性：公开账号关注直接生效，私密账号走请求流程
const (
	ProfilePublic  = "public"
	ProfilePrivate = "private"
)

// User 用户本体，粉丝/关注计数为冗余列，随关系迁移同事务重算
type User struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Username       string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email          string `gorm:"type:varchar(255)"`
	Password       string `gorm:"type:varchar(255);not null"`
	ProfileStatus  string `gorm:"type:varchar(10);not null;default:public"`
	FollowerCount  int64  `gorm:"not null;default:0"`
	FollowingCount int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string { return "users" }
