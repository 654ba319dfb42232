package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// followAllowedFrom 允许发起 follow 的当前状态集合
var followAllowedFrom = map[model.RelationStatus]bool{
	model.StatusNotFollowed:      true,
	model.StatusUnfollowed:       true,
	model.StatusRequestRejected:  true,
	model.StatusRequestRescinded: true,
	model.StatusFollowerDeleted:  true,
	model.StatusUnblocked:        true,
}

// RelationService 关系状态机。
// 每次迁移 = 事务内软删旧边 + 插入新边 + 重算双方计数 + 同步派发事件。
type RelationService interface {
	GetStatus(ctx context.Context, actor *model.User, username string) (model.RelationStatus, error)
	// Follow 公开主页直接 followed，私密主页进入 request pending；返回落地状态
	Follow(ctx context.Context, actor *model.User, username string) (model.RelationStatus, error)
	Unfollow(ctx context.Context, actor *model.User, username string) error
	AcceptRequest(ctx context.Context, actor *model.User, followerUsername string) error
	RejectRequest(ctx context.Context, actor *model.User, followerUsername string) error
	DeleteFollower(ctx context.Context, actor *model.User, followerUsername string) error
	Block(ctx context.Context, actor *model.User, username string) error
	Unblock(ctx context.Context, actor *model.User, username string) error
	AddCloseFriend(ctx context.Context, actor *model.User, followerUsername string) error
	RemoveCloseFriend(ctx context.Context, actor *model.User, followerUsername string) error

	FollowerList(ctx context.Context, viewer *model.User, username string, page, limit int) (*UserListPage, error)
	FollowingList(ctx context.Context, viewer *model.User, username string, page, limit int) (*UserListPage, error)
	CloseFriendList(ctx context.Context, viewer *model.User, page, limit int) (*UserListPage, error)
	BlockList(ctx context.Context, viewer *model.User, page, limit int) (*UserListPage, error)
}

// Meta 分页元信息
type Meta struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// RelationUser 关系列表项
type RelationUser struct {
	Username            string              `json:"username"`
	FollowerCount       int64               `json:"follower_count"`
	FollowingCount      int64               `json:"following_count"`
	FollowStatus        model.DisplayStatus `json:"followStatus"`
	ReverseFollowStatus model.DisplayStatus `json:"reverseFollowStatus"`
}

type UserListPage struct {
	Data []RelationUser `json:"data"`
	Meta Meta           `json:"meta"`
}

type relationService struct {
	db        *gorm.DB
	users     repository.UserRepository
	relations repository.RelationRepository
	events    *Dispatcher
}

func NewRelationService(db *gorm.DB, users repository.UserRepository, relations repository.RelationRepository, events *Dispatcher) RelationService {
	return &relationService{db: db, users: users, relations: relations, events: events}
}

func (s *relationService) getUser(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	return u, nil
}

// statusOf a→b 的当前状态，无边即 not followed
func (s *relationService) statusOf(ctx context.Context, relations repository.RelationRepository, aID, bID string) (model.RelationStatus, error) {
	rel, err := relations.Current(ctx, aID, bID)
	if err != nil {
		return "", err
	}
	if rel == nil {
		return model.StatusNotFollowed, nil
	}
	return rel.Status, nil
}

func (s *relationService) GetStatus(ctx context.Context, actor *model.User, username string) (model.RelationStatus, error) {
	target, err := s.getUser(ctx, username)
	if err != nil {
		return "", err
	}
	return s.statusOf(ctx, s.relations, actor.ID, target.ID)
}

func (s *relationService) Follow(ctx context.Context, actor *model.User, username string) (model.RelationStatus, error) {
	target, err := s.getUser(ctx, username)
	if err != nil {
		return "", err
	}
	if actor.ID == target.ID {
		return "", fmt.Errorf("%w: cannot follow self", ErrBadRequest)
	}
	status, err := s.statusOf(ctx, s.relations, actor.ID, target.ID)
	if err != nil {
		return "", err
	}
	reverse, err := s.statusOf(ctx, s.relations, target.ID, actor.ID)
	if err != nil {
		return "", err
	}
	if !followAllowedFrom[status] || reverse == model.StatusBlocked {
		return "", fmt.Errorf("%w: follow not allowed from status %q", ErrBadRequest, status)
	}

	newStatus := model.StatusFollowed
	if target.ProfileStatus == model.ProfilePrivate {
		newStatus = model.StatusRequestPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, actor.ID, target.ID, newStatus)
		if err != nil {
			return err
		}
		if newStatus.IsActive() {
			if err := s.recountBoth(ctx, tx, actor.ID, target.ID); err != nil {
				return err
			}
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: actor, Following: target})
	})
	if err != nil {
		return "", err
	}
	return newStatus, nil
}

func (s *relationService) Unfollow(ctx context.Context, actor *model.User, username string) error {
	target, err := s.getUser(ctx, username)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, actor.ID, target.ID)
	if err != nil {
		return err
	}

	var newStatus model.RelationStatus
	switch status {
	case model.StatusFollowed, model.StatusRequestAccepted:
		newStatus = model.StatusUnfollowed
	case model.StatusRequestPending:
		newStatus = model.StatusRequestRescinded
	default:
		return fmt.Errorf("%w: unfollow not allowed from status %q", ErrBadRequest, status)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, actor.ID, target.ID, newStatus)
		if err != nil {
			return err
		}
		if newStatus == model.StatusUnfollowed {
			if err := s.recountBoth(ctx, tx, actor.ID, target.ID); err != nil {
				return err
			}
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: actor, Following: target})
	})
}

func (s *relationService) AcceptRequest(ctx context.Context, actor *model.User, followerUsername string) error {
	follower, err := s.getUser(ctx, followerUsername)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, follower.ID, actor.ID)
	if err != nil {
		return err
	}
	if status != model.StatusRequestPending {
		return fmt.Errorf("%w: no pending request from %q", ErrBadRequest, followerUsername)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, follower.ID, actor.ID, model.StatusRequestAccepted)
		if err != nil {
			return err
		}
		if err := s.recountBoth(ctx, tx, follower.ID, actor.ID); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: follower, Following: actor})
	})
}

func (s *relationService) RejectRequest(ctx context.Context, actor *model.User, followerUsername string) error {
	follower, err := s.getUser(ctx, followerUsername)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, follower.ID, actor.ID)
	if err != nil {
		return err
	}
	if status != model.StatusRequestPending {
		return fmt.Errorf("%w: no pending request from %q", ErrBadRequest, followerUsername)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, follower.ID, actor.ID, model.StatusRequestRejected)
		if err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: follower, Following: actor})
	})
}

func (s *relationService) DeleteFollower(ctx context.Context, actor *model.User, followerUsername string) error {
	follower, err := s.getUser(ctx, followerUsername)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, follower.ID, actor.ID)
	if err != nil {
		return err
	}
	if status != model.StatusFollowed && status != model.StatusRequestAccepted {
		return fmt.Errorf("%w: %q is not a follower", ErrBadRequest, followerUsername)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, follower.ID, actor.ID, model.StatusFollowerDeleted)
		if err != nil {
			return err
		}
		if err := s.recountBoth(ctx, tx, follower.ID, actor.ID); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: follower, Following: actor})
	})
}

// Block 总是允许；先清掉对方指向自己的边，再写入 blocked
func (s *relationService) Block(ctx context.Context, actor *model.User, username string) error {
	target, err := s.getUser(ctx, username)
	if err != nil {
		return err
	}
	if actor.ID == target.ID {
		return fmt.Errorf("%w: cannot block self", ErrBadRequest)
	}
	reverse, err := s.statusOf(ctx, s.relations, target.ID, actor.ID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		relations := s.relations.WithTx(tx)
		if reverse != model.StatusBlocked && reverse != model.StatusNotFollowed {
			if err := relations.DeletePair(ctx, target.ID, actor.ID); err != nil {
				return err
			}
		}
		rel, err := relations.Transition(ctx, actor.ID, target.ID, model.StatusBlocked)
		if err != nil {
			return err
		}
		if err := s.recountBoth(ctx, tx, actor.ID, target.ID); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: actor, Following: target})
	})
}

// Unblock 只从 blocked 出发，不恢复拉黑前的关注状态
func (s *relationService) Unblock(ctx context.Context, actor *model.User, username string) error {
	target, err := s.getUser(ctx, username)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, actor.ID, target.ID)
	if err != nil {
		return err
	}
	if status != model.StatusBlocked {
		return fmt.Errorf("%w: %q is not blocked", ErrBadRequest, username)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, actor.ID, target.ID, model.StatusUnblocked)
		if err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: actor, Following: target})
	})
}

func (s *relationService) AddCloseFriend(ctx context.Context, actor *model.User, followerUsername string) error {
	follower, err := s.getUser(ctx, followerUsername)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, follower.ID, actor.ID)
	if err != nil {
		return err
	}
	if status != model.StatusFollowed && status != model.StatusRequestAccepted {
		return fmt.Errorf("%w: %q is not a follower", ErrBadRequest, followerUsername)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, follower.ID, actor.ID, model.StatusClose)
		if err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{Relation: rel, Follower: follower, Following: actor})
	})
}

// RemoveCloseFriend 把边改回 followed；该次 followed 写入不补发通知
func (s *relationService) RemoveCloseFriend(ctx context.Context, actor *model.User, followerUsername string) error {
	follower, err := s.getUser(ctx, followerUsername)
	if err != nil {
		return err
	}
	status, err := s.statusOf(ctx, s.relations, follower.ID, actor.ID)
	if err != nil {
		return err
	}
	if status != model.StatusClose {
		return fmt.Errorf("%w: %q is not a close friend", ErrBadRequest, followerUsername)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel, err := s.relations.WithTx(tx).Transition(ctx, follower.ID, actor.ID, model.StatusFollowed)
		if err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, RelationChanged{
			Relation: rel, Follower: follower, Following: actor, SuppressFollowed: true,
		})
	})
}

// recountBoth 从边表全量重算双方计数，避免并发下增量漂移
func (s *relationService) recountBoth(ctx context.Context, tx *gorm.DB, aID, bID string) error {
	relations := s.relations.WithTx(tx)
	users := s.users.WithTx(tx)
	for _, id := range []string{aID, bID} {
		followers, err := relations.CountFollowers(ctx, id)
		if err != nil {
			return err
		}
		followings, err := relations.CountFollowings(ctx, id)
		if err != nil {
			return err
		}
		if err := users.SetFollowCounts(ctx, id, followers, followings); err != nil {
			return err
		}
	}
	return nil
}

func (s *relationService) FollowerList(ctx context.Context, viewer *model.User, username string, page, limit int) (*UserListPage, error) {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	rels, total, err := s.relations.FollowersPage(ctx, user.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.buildUserPage(ctx, viewer, rels, relationFollower, page, limit, total)
}

func (s *relationService) FollowingList(ctx context.Context, viewer *model.User, username string, page, limit int) (*UserListPage, error) {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	rels, total, err := s.relations.FollowingsPage(ctx, user.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.buildUserPage(ctx, viewer, rels, relationFollowing, page, limit, total)
}

func (s *relationService) CloseFriendList(ctx context.Context, viewer *model.User, page, limit int) (*UserListPage, error) {
	page, limit = normalizePage(page, limit)
	rels, total, err := s.relations.CloseFriendsPage(ctx, viewer.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.buildUserPage(ctx, viewer, rels, relationFollower, page, limit, total)
}

func (s *relationService) BlockList(ctx context.Context, viewer *model.User, page, limit int) (*UserListPage, error) {
	page, limit = normalizePage(page, limit)
	rels, total, err := s.relations.BlockedPage(ctx, viewer.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.buildUserPage(ctx, viewer, rels, relationFollowing, page, limit, total)
}

type relationSide int

const (
	relationFollower relationSide = iota
	relationFollowing
)

func (s *relationService) buildUserPage(ctx context.Context, viewer *model.User, rels []*model.Relation, side relationSide, page, limit int, total int64) (*UserListPage, error) {
	items := make([]RelationUser, 0, len(rels))
	for _, rel := range rels {
		var u *model.User
		if side == relationFollower {
			u = rel.Follower
		} else {
			u = rel.Following
		}
		if u == nil {
			continue
		}
		status, err := s.statusOf(ctx, s.relations, viewer.ID, u.ID)
		if err != nil {
			return nil, err
		}
		reverse, err := s.statusOf(ctx, s.relations, u.ID, viewer.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, RelationUser{
			Username:            u.Username,
			FollowerCount:       u.FollowerCount,
			FollowingCount:      u.FollowingCount,
			FollowStatus:        model.ToDisplayStatus(status),
			ReverseFollowStatus: model.ToDisplayStatus(reverse),
		})
	}
	return &UserListPage{Data: items, Meta: buildMeta(page, limit, total)}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func buildMeta(page, limit int, total int64) Meta {
	totalPage := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPage++
	}
	return Meta{Page: page, Limit: limit, Total: total, TotalPage: totalPage}
}
