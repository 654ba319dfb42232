package service

import (
	"context"
	"time"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// NotificationItem 通知流条目
type NotificationItem struct {
	ID                  string                 `json:"id"`
	Type                model.NotificationType `json:"type"`
	SenderUsername      string                 `json:"sender"`
	RecipientUsername   string                 `json:"recipient,omitempty"`
	PostID              *string                `json:"postId,omitempty"`
	CommentID           *string                `json:"commentId,omitempty"`
	IsRead              bool                   `json:"isRead"`
	CreatedAt           time.Time              `json:"createdAt"`
	FollowStatus        model.DisplayStatus    `json:"followStatus"`
	ReverseFollowStatus model.DisplayStatus    `json:"reverseFollowStatus"`
}

type NotificationPage struct {
	Data []NotificationItem `json:"data"`
	Meta Meta               `json:"meta"`
}

// NotificationService 通知读路径：两条流 + 两个未读数。
// 列表返回即把对应已读跟踪行置已读（幂等写，重复请求无害）。
type NotificationService interface {
	List(ctx context.Context, user *model.User, page, limit int) (*NotificationPage, error)
	FollowingsFeed(ctx context.Context, user *model.User, page, limit int) (*NotificationPage, error)
	UnreadCount(ctx context.Context, user *model.User) (int64, error)
	UnreadFollowingsCount(ctx context.Context, user *model.User) (int64, error)
}

type notificationService struct {
	notifs     repository.NotificationRepository
	userNotifs repository.UserNotificationRepository
	relations  repository.RelationRepository
	unread     *cache.UnreadCache // 可为 nil
}

func NewNotificationService(notifs repository.NotificationRepository, userNotifs repository.UserNotificationRepository, relations repository.RelationRepository, unread *cache.UnreadCache) NotificationService {
	return &notificationService{notifs: notifs, userNotifs: userNotifs, relations: relations, unread: unread}
}

// List 主通知流：recipient = user，按时间倒序
func (s *notificationService) List(ctx context.Context, user *model.User, page, limit int) (*NotificationPage, error) {
	page, limit = normalizePage(page, limit)
	notifs, total, err := s.notifs.ListByRecipient(ctx, user.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]NotificationItem, 0, len(notifs))
	for _, notif := range notifs {
		item, ok, err := s.buildItem(ctx, user, notif, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, item)
		if err := s.userNotifs.SetRead(ctx, user.ID, notif.ID); err != nil {
			return nil, err
		}
	}

	if s.unread != nil {
		s.unread.Invalidate(ctx, user.ID)
	}
	return &NotificationPage{Data: items, Meta: buildMeta(page, limit, total)}, nil
}

// FollowingsFeed 关注动态流：我关注的人做了什么。
// 过滤条件（sender ∈ 活跃关注、类型、时间先后、排除自己）在仓储查询内完成。
func (s *notificationService) FollowingsFeed(ctx context.Context, user *model.User, page, limit int) (*NotificationPage, error) {
	page, limit = normalizePage(page, limit)
	notifs, total, err := s.notifs.FeedByViewer(ctx, user.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]NotificationItem, 0, len(notifs))
	for _, notif := range notifs {
		item, ok, err := s.buildItem(ctx, user, notif, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, item)
		if err := s.userNotifs.SetRead(ctx, user.ID, notif.ID); err != nil {
			return nil, err
		}
	}

	if s.unread != nil {
		s.unread.Invalidate(ctx, user.ID)
	}
	return &NotificationPage{Data: items, Meta: buildMeta(page, limit, total)}, nil
}

// buildItem 视角用户必须持有该通知的已读跟踪行，否则跳过。
// feed 流里随行附上 viewer 与通知接收者之间的折叠关注状态。
func (s *notificationService) buildItem(ctx context.Context, viewer *model.User, notif *model.Notification, feed bool) (NotificationItem, bool, error) {
	un, err := s.userNotifs.Find(ctx, viewer.ID, notif.ID)
	if err != nil {
		return NotificationItem{}, false, err
	}
	if un == nil {
		return NotificationItem{}, false, nil
	}

	otherID := notif.SenderID
	if feed {
		otherID = notif.RecipientID
	}
	status, err := s.displayStatus(ctx, viewer.ID, otherID)
	if err != nil {
		return NotificationItem{}, false, err
	}
	reverse, err := s.displayStatus(ctx, otherID, viewer.ID)
	if err != nil {
		return NotificationItem{}, false, err
	}

	item := NotificationItem{
		ID:                  notif.ID,
		Type:                notif.Type,
		PostID:              notif.PostID,
		CommentID:           notif.CommentID,
		IsRead:              un.IsRead,
		CreatedAt:           notif.CreatedAt,
		FollowStatus:        status,
		ReverseFollowStatus: reverse,
	}
	if notif.Sender != nil {
		item.SenderUsername = notif.Sender.Username
	}
	if feed && notif.Recipient != nil {
		item.RecipientUsername = notif.Recipient.Username
	}
	return item, true, nil
}

func (s *notificationService) displayStatus(ctx context.Context, aID, bID string) (model.DisplayStatus, error) {
	rel, err := s.relations.Current(ctx, aID, bID)
	if err != nil {
		return "", err
	}
	if rel == nil {
		return model.DisplayNotFollowed, nil
	}
	return model.ToDisplayStatus(rel.Status), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, user *model.User) (int64, error) {
	if s.unread != nil {
		if n, ok := s.unread.GetPrimary(ctx, user.ID); ok {
			return n, nil
		}
	}
	n, err := s.userNotifs.UnreadPrimaryCount(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if s.unread != nil {
		s.unread.SetPrimary(ctx, user.ID, n)
	}
	return n, nil
}

func (s *notificationService) UnreadFollowingsCount(ctx context.Context, user *model.User) (int64, error) {
	if s.unread != nil {
		if n, ok := s.unread.GetFollowings(ctx, user.ID); ok {
			return n, nil
		}
	}
	n, err := s.userNotifs.UnreadFollowingsCount(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if s.unread != nil {
		s.unread.SetFollowings(ctx, user.ID, n)
	}
	return n, nil
}
