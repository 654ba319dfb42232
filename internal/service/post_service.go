package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// PostService 帖子写路径。mention 列表由调用方从 caption 解析好传入。
type PostService interface {
	Create(ctx context.Context, author *model.User, caption string, mentions []string) (*model.Post, error)
	Update(ctx context.Context, author *model.User, postID, caption string, mentions []string) (*model.Post, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
}

type postService struct {
	db        *gorm.DB
	posts     repository.PostRepository
	users     repository.UserRepository
	relations repository.RelationRepository
	events    *Dispatcher
}

func NewPostService(db *gorm.DB, posts repository.PostRepository, users repository.UserRepository, relations repository.RelationRepository, events *Dispatcher) PostService {
	return &postService{db: db, posts: posts, users: users, relations: relations, events: events}
}

func (s *postService) Create(ctx context.Context, author *model.User, caption string, mentions []string) (*model.Post, error) {
	if err := s.checkMentions(ctx, author, mentions); err != nil {
		return nil, err
	}
	post := &model.Post{UserID: author.ID, Caption: caption, Mentions: mentions}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Create(ctx, post); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, PostCreated{Post: post, Author: author})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, author *model.User, postID, caption string, mentions []string) (*model.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != author.ID {
		return nil, fmt.Errorf("%w: not the post owner", ErrForbidden)
	}
	if err := s.checkMentions(ctx, author, mentions); err != nil {
		return nil, err
	}

	post.Caption = caption
	post.Mentions = mentions
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Update(ctx, post); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, PostUpdated{Post: post, Author: author})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %q", ErrNotFound, postID)
	}
	return post, nil
}

// checkMentions 提到被拉黑/拉黑自己的用户是 BadRequest；未知用户名在这里放过，
// 通知产出时静默跳过
func (s *postService) checkMentions(ctx context.Context, author *model.User, mentions []string) error {
	for _, mention := range mentions {
		if mention == author.Username {
			continue
		}
		mentioned, err := s.users.GetByUsername(ctx, mention)
		if err != nil {
			return err
		}
		if mentioned == nil {
			continue
		}
		for _, pair := range [][2]string{{author.ID, mentioned.ID}, {mentioned.ID, author.ID}} {
			rel, err := s.relations.Current(ctx, pair[0], pair[1])
			if err != nil {
				return err
			}
			if rel != nil && rel.Status == model.StatusBlocked {
				return fmt.Errorf("%w: cannot mention %q", ErrBadRequest, mention)
			}
		}
	}
	return nil
}
