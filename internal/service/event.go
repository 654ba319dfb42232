package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
)

// Event 域事件。写操作在事务内发布，订阅方拿到同一个事务句柄，
// 通知写入与触发它的变更一起提交或回滚。
type Event interface {
	Name() string
}

// RelationChanged 关系边完成一次状态迁移。
// SuppressFollowed 为 true 时订阅方不补发 followed 通知，
// 用于移除密友时重写 followed 边的场景。
type RelationChanged struct {
	Relation         *model.Relation
	Follower         *model.User
	Following        *model.User
	SuppressFollowed bool
}

func (RelationChanged) Name() string { return "relation.changed" }

// PostCreated 帖子创建完成（含 mentions）
type PostCreated struct {
	Post   *model.Post
	Author *model.User
}

func (PostCreated) Name() string { return "post.created" }

// PostUpdated 帖子更新完成，mentions 可能有增减
type PostUpdated struct {
	Post   *model.Post
	Author *model.User
}

func (PostUpdated) Name() string { return "post.updated" }

type PostLiked struct {
	Post  *model.Post
	Liker *model.User
}

func (PostLiked) Name() string { return "post.liked" }

type PostUnliked struct {
	Post  *model.Post
	Liker *model.User
}

func (PostUnliked) Name() string { return "post.unliked" }

type CommentCreated struct {
	Comment *model.Comment
	Post    *model.Post
	Author  *model.User
}

func (CommentCreated) Name() string { return "comment.created" }

// EventHandler 订阅函数，err 非空会令触发事务回滚
type EventHandler func(ctx context.Context, tx *gorm.DB, evt Event) error

// Dispatcher 同步分发器，无队列无重试，按注册顺序调用
type Dispatcher struct {
	handlers []EventHandler
}

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

func (d *Dispatcher) Register(h EventHandler) {
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) Dispatch(ctx context.Context, tx *gorm.DB, evt Event) error {
	for _, h := range d.handlers {
		if err := h(ctx, tx, evt); err != nil {
			return err
		}
	}
	return nil
}
