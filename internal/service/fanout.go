package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// Fanout 通知扇出：主接收者一行已读跟踪行，发送者的每个活跃粉丝再各一行。
// 扇出在触发动作的事务内同步完成，不走队列。
type Fanout struct {
	relations  repository.RelationRepository
	userNotifs repository.UserNotificationRepository
	unread     *cache.UnreadCache // 可为 nil（测试）
}

func NewFanout(relations repository.RelationRepository, userNotifs repository.UserNotificationRepository, unread *cache.UnreadCache) *Fanout {
	return &Fanout{relations: relations, userNotifs: userNotifs, unread: unread}
}

// Deliver 写主接收者与次级接收者的 user_notification 行。
// 撤回场景不清理旧行：父通知软删后读路径自然不再返回。
func (f *Fanout) Deliver(ctx context.Context, tx *gorm.DB, notif *model.Notification) error {
	userNotifs := f.userNotifs.WithTx(tx)

	if err := userNotifs.Create(ctx, notif.RecipientID, notif.ID); err != nil {
		return err
	}
	touched := []string{notif.RecipientID}

	followers, err := f.relations.WithTx(tx).ActiveFollowers(ctx, notif.SenderID)
	if err != nil {
		return err
	}
	for _, rel := range followers {
		if rel.FollowerID == notif.RecipientID {
			continue
		}
		if err := userNotifs.Create(ctx, rel.FollowerID, notif.ID); err != nil {
			return err
		}
		touched = append(touched, rel.FollowerID)
	}

	if f.unread != nil {
		f.unread.Invalidate(ctx, touched...)
	}
	return nil
}

// Invalidate 撤回路径由订阅方调用，只失效计数缓存
func (f *Fanout) Invalidate(ctx context.Context, userIDs ...string) {
	if f.unread != nil {
		f.unread.Invalidate(ctx, userIDs...)
	}
}
