package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// Notifier 订阅全部域事件并产出/撤回通知。
// 每条通知先按自然键撤回再写入（仓储层保证），反复切换动作不会产生重复行。
type Notifier struct {
	notifs    repository.NotificationRepository
	users     repository.UserRepository
	relations repository.RelationRepository
	fanout    *Fanout
}

func NewNotifier(notifs repository.NotificationRepository, users repository.UserRepository, relations repository.RelationRepository, fanout *Fanout) *Notifier {
	return &Notifier{notifs: notifs, users: users, relations: relations, fanout: fanout}
}

// Handle 作为 EventHandler 注册到 Dispatcher
func (n *Notifier) Handle(ctx context.Context, tx *gorm.DB, evt Event) error {
	switch e := evt.(type) {
	case RelationChanged:
		return n.onRelationChanged(ctx, tx, e)
	case PostCreated:
		return n.onPostCreated(ctx, tx, e)
	case PostUpdated:
		return n.onPostUpdated(ctx, tx, e)
	case PostLiked:
		return n.onPostLiked(ctx, tx, e)
	case PostUnliked:
		return n.onPostUnliked(ctx, tx, e)
	case CommentCreated:
		return n.onCommentCreated(ctx, tx, e)
	}
	return nil
}

func (n *Notifier) onRelationChanged(ctx context.Context, tx *gorm.DB, e RelationChanged) error {
	rel := e.Relation
	if rel.FollowerID == rel.FollowingID {
		return nil
	}
	notifs := n.notifs.WithTx(tx)

	switch rel.Status {
	case model.StatusFollowed, model.StatusRequestAccepted:
		if rel.Status == model.StatusRequestAccepted {
			// 请求已处理，撤掉挂起的 followRequest，并通知原关注者
			if err := notifs.Retract(ctx, repository.NotificationKey{
				RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowRequest,
			}); err != nil {
				return err
			}
			accepted, err := notifs.Create(ctx, &model.Notification{
				RecipientID: rel.FollowerID, SenderID: rel.FollowingID, Type: model.NotifRequestAccepted,
			})
			if err != nil {
				return err
			}
			if err := n.fanout.Deliver(ctx, tx, accepted); err != nil {
				return err
			}
		}
		if e.SuppressFollowed {
			return nil
		}
		followed, err := notifs.Create(ctx, &model.Notification{
			RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowed,
		})
		if err != nil {
			return err
		}
		return n.fanout.Deliver(ctx, tx, followed)

	case model.StatusRequestPending:
		req, err := notifs.Create(ctx, &model.Notification{
			RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowRequest,
		})
		if err != nil {
			return err
		}
		return n.fanout.Deliver(ctx, tx, req)

	case model.StatusRequestRejected, model.StatusRequestRescinded:
		return notifs.Retract(ctx, repository.NotificationKey{
			RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowRequest,
		})

	case model.StatusUnfollowed, model.StatusFollowerDeleted:
		if err := notifs.Retract(ctx, repository.NotificationKey{
			RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowed,
		}); err != nil {
			return err
		}
		if err := notifs.Retract(ctx, repository.NotificationKey{
			RecipientID: rel.FollowerID, SenderID: rel.FollowingID, Type: model.NotifRequestAccepted,
		}); err != nil {
			return err
		}
		return n.invalidateAudience(ctx, tx, rel.FollowerID, rel.FollowingID)

	case model.StatusBlocked:
		// 双向撤回 followed / requestAccepted
		for _, key := range []repository.NotificationKey{
			{RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifFollowed},
			{RecipientID: rel.FollowerID, SenderID: rel.FollowingID, Type: model.NotifFollowed},
			{RecipientID: rel.FollowerID, SenderID: rel.FollowingID, Type: model.NotifRequestAccepted},
			{RecipientID: rel.FollowingID, SenderID: rel.FollowerID, Type: model.NotifRequestAccepted},
		} {
			if err := notifs.Retract(ctx, key); err != nil {
				return err
			}
		}
		return n.invalidateAudience(ctx, tx, rel.FollowerID, rel.FollowingID)
	}
	return nil
}

func (n *Notifier) onPostCreated(ctx context.Context, tx *gorm.DB, e PostCreated) error {
	for _, mention := range e.Post.Mentions {
		if err := n.notifyMention(ctx, tx, e.Post, e.Author, mention); err != nil {
			return err
		}
	}
	return nil
}

// onPostUpdated 按 mention 列表差分：移除的撤回，新增的补发，保留的不动
func (n *Notifier) onPostUpdated(ctx context.Context, tx *gorm.DB, e PostUpdated) error {
	notifs := n.notifs.WithTx(tx)
	old, err := notifs.ActiveMentions(ctx, e.Post.ID)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(e.Post.Mentions))
	for _, m := range e.Post.Mentions {
		current[m] = true
	}

	previous := make(map[string]bool, len(old))
	for _, notif := range old {
		if notif.Recipient == nil {
			continue
		}
		previous[notif.Recipient.Username] = true
		if !current[notif.Recipient.Username] {
			if err := notifs.RetractByID(ctx, notif.ID); err != nil {
				return err
			}
			if err := n.invalidateAudience(ctx, tx, notif.SenderID, notif.RecipientID); err != nil {
				return err
			}
		}
	}

	for _, mention := range e.Post.Mentions {
		if previous[mention] {
			continue
		}
		if err := n.notifyMention(ctx, tx, e.Post, e.Author, mention); err != nil {
			return err
		}
	}
	return nil
}

// notifyMention 未知用户名静默跳过；拉黑任一方向不通知
func (n *Notifier) notifyMention(ctx context.Context, tx *gorm.DB, post *model.Post, author *model.User, mention string) error {
	if mention == author.Username {
		return nil
	}
	mentioned, err := n.users.WithTx(tx).GetByUsername(ctx, mention)
	if err != nil {
		return err
	}
	if mentioned == nil {
		return nil
	}
	blocked, err := n.eitherBlocked(ctx, tx, author.ID, mentioned.ID)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}
	notif, err := n.notifs.WithTx(tx).Create(ctx, &model.Notification{
		RecipientID: mentioned.ID, SenderID: author.ID, Type: model.NotifMention, PostID: &post.ID,
	})
	if err != nil {
		return err
	}
	return n.fanout.Deliver(ctx, tx, notif)
}

func (n *Notifier) onPostLiked(ctx context.Context, tx *gorm.DB, e PostLiked) error {
	if e.Liker.ID == e.Post.UserID {
		return nil
	}
	notif, err := n.notifs.WithTx(tx).Create(ctx, &model.Notification{
		RecipientID: e.Post.UserID, SenderID: e.Liker.ID, Type: model.NotifLike, PostID: &e.Post.ID,
	})
	if err != nil {
		return err
	}
	return n.fanout.Deliver(ctx, tx, notif)
}

func (n *Notifier) onPostUnliked(ctx context.Context, tx *gorm.DB, e PostUnliked) error {
	if e.Liker.ID == e.Post.UserID {
		return nil
	}
	if err := n.notifs.WithTx(tx).Retract(ctx, repository.NotificationKey{
		RecipientID: e.Post.UserID, SenderID: e.Liker.ID, Type: model.NotifLike, PostID: &e.Post.ID,
	}); err != nil {
		return err
	}
	return n.invalidateAudience(ctx, tx, e.Liker.ID, e.Post.UserID)
}

func (n *Notifier) onCommentCreated(ctx context.Context, tx *gorm.DB, e CommentCreated) error {
	// 回复不通知帖主
	if e.Comment.ParentID != nil {
		return nil
	}
	if e.Author.ID == e.Post.UserID {
		return nil
	}
	notif, err := n.notifs.WithTx(tx).Create(ctx, &model.Notification{
		RecipientID: e.Post.UserID, SenderID: e.Author.ID,
		Type: model.NotifComment, PostID: &e.Post.ID, CommentID: &e.Comment.ID,
	})
	if err != nil {
		return err
	}
	return n.fanout.Deliver(ctx, tx, notif)
}

func (n *Notifier) eitherBlocked(ctx context.Context, tx *gorm.DB, aID, bID string) (bool, error) {
	relations := n.relations.WithTx(tx)
	ab, err := relations.Current(ctx, aID, bID)
	if err != nil {
		return false, err
	}
	if ab != nil && ab.Status == model.StatusBlocked {
		return true, nil
	}
	ba, err := relations.Current(ctx, bID, aID)
	if err != nil {
		return false, err
	}
	return ba != nil && ba.Status == model.StatusBlocked, nil
}

// invalidateAudience 撤回后失效发送者粉丝与直接接收者的未读计数缓存
func (n *Notifier) invalidateAudience(ctx context.Context, tx *gorm.DB, senderID string, recipientIDs ...string) error {
	followers, err := n.relations.WithTx(tx).ActiveFollowers(ctx, senderID)
	if err != nil {
		return err
	}
	touched := append([]string{}, recipientIDs...)
	for _, rel := range followers {
		touched = append(touched, rel.FollowerID)
	}
	n.fanout.Invalidate(ctx, touched...)
	return nil
}
