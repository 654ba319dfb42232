package model

import (
	"time"

	"gorm.io/gorm"
)

// RelationStatus 有向关系边状态。
// 终止态（unfollowed/rejected/rescinded/follower deleted/unblocked）保留为
// 软删历史，StatusNotFollowed 是无现存行时的虚拟状态，不落库。
type RelationStatus string

const (
	StatusRequestPending   RelationStatus = "request pending"
	StatusFollowed         RelationStatus = "followed"
	StatusRequestAccepted  RelationStatus = "request accepted"
	StatusRequestRejected  RelationStatus = "request rejected"
	StatusRequestRescinded RelationStatus = "request rescinded"
	StatusUnfollowed       RelationStatus = "unfollowed"
	StatusFollowerDeleted  RelationStatus = "follower deleted"
	StatusBlocked          RelationStatus = "blocked"
	StatusUnblocked        RelationStatus = "unblocked"
	StatusClose            RelationStatus = "close"
	StatusNotFollowed      RelationStatus = "not followed"
)

// ActiveStatuses 计入粉丝/关注数与通知扇出的状态
var ActiveStatuses = []RelationStatus{StatusFollowed, StatusRequestAccepted, StatusClose}

// IsActive 该状态是否构成生效中的关注
func (s RelationStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// DisplayStatus 对外展示的折叠状态
type DisplayStatus string

const (
	DisplayBlocked     DisplayStatus = "blocked"
	DisplayFollowed    DisplayStatus = "followed"
	DisplayRequested   DisplayStatus = "requested"
	DisplayNotFollowed DisplayStatus = "not followed"
)

// ToDisplayStatus 内部状态折叠成展示状态
func ToDisplayStatus(s RelationStatus) DisplayStatus {
	switch s {
	case StatusBlocked:
		return DisplayBlocked
	case StatusFollowed, StatusRequestAccepted, StatusClose:
		return DisplayFollowed
	case StatusRequestPending:
		return DisplayRequested
	default:
		return DisplayNotFollowed
	}
}

// Relation 有向关系边（follower 指向 following）。
// 状态迁移不改行，软删旧行插新行，同一有向对至多一条未删除行。
type Relation struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string         `gorm:"type:varchar(36);index:idx_relation_pair;not null"`
	FollowingID string         `gorm:"type:varchar(36);index:idx_relation_pair;not null"`
	Status      RelationStatus `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Follower  *User `gorm:"foreignKey:FollowerID"`
	Following *User `gorm:"foreignKey:FollowingID"`
}

func (Relation) TableName() string { return "relations" }
