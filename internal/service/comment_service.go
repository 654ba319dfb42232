package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

// CommentItem 评论树节点，回复按父指针挂载、广度优先物化
type CommentItem struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Text      string        `json:"text"`
	LikeCount int64         `json:"like_count"`
	Replies   []CommentItem `json:"replies,omitempty"`
}

type CommentPage struct {
	Data []CommentItem `json:"data"`
	Meta Meta          `json:"meta"`
}

// CommentService 评论写读路径；只有一级评论触发通知
type CommentService interface {
	Create(ctx context.Context, author *model.User, postID, text string, parentID *string) (*model.Comment, error)
	List(ctx context.Context, postID string, page, limit int) (*CommentPage, error)
}

type commentService struct {
	db       *gorm.DB
	posts    PostService
	comments repository.CommentRepository
	prepo    repository.PostRepository
	events   *Dispatcher
}

func NewCommentService(db *gorm.DB, posts PostService, comments repository.CommentRepository, prepo repository.PostRepository, events *Dispatcher) CommentService {
	return &commentService{db: db, posts: posts, comments: comments, prepo: prepo, events: events}
}

func (s *commentService) Create(ctx context.Context, author *model.User, postID, text string, parentID *string) (*model.Comment, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.comments.Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: comment %q", ErrNotFound, *parentID)
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", ErrBadRequest)
		}
	}

	comment := &model.Comment{PostID: postID, UserID: author.ID, Text: text, ParentID: parentID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)
		if err := comments.Create(ctx, comment); err != nil {
			return err
		}
		count, err := comments.CountForPost(ctx, postID)
		if err != nil {
			return err
		}
		if err := s.prepo.WithTx(tx).SetCommentCount(ctx, postID, count); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, tx, CommentCreated{Comment: comment, Post: post, Author: author})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, postID string, page, limit int) (*CommentPage, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	top, total, err := s.comments.ListTopLevel(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]CommentItem, 0, len(top))
	for _, c := range top {
		item, err := s.materialize(ctx, c)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &CommentPage{Data: items, Meta: buildMeta(page, limit, total)}, nil
}

// materialize 广度优先收集回复，再从最深层向上组装，避免无界递归
func (s *commentService) materialize(ctx context.Context, root *model.Comment) (CommentItem, error) {
	nodes := map[string]*CommentItem{}
	children := map[string][]string{}

	rootItem := toCommentItem(root)
	nodes[root.ID] = &rootItem

	order := []string{root.ID}
	for i := 0; i < len(order); i++ {
		parentID := order[i]
		replies, err := s.comments.ListReplies(ctx, parentID)
		if err != nil {
			return CommentItem{}, err
		}
		for _, reply := range replies {
			item := toCommentItem(reply)
			nodes[reply.ID] = &item
			children[parentID] = append(children[parentID], reply.ID)
			order = append(order, reply.ID)
		}
	}

	// 逆 BFS 序组装，保证挂到父节点时子树已完整
	for i := len(order) - 1; i >= 0; i-- {
		node := nodes[order[i]]
		for _, childID := range children[order[i]] {
			node.Replies = append(node.Replies, *nodes[childID])
		}
	}
	return *nodes[root.ID], nil
}

func toCommentItem(c *model.Comment) CommentItem {
	item := CommentItem{ID: c.ID, Text: c.Text, LikeCount: c.LikeCount}
	if c.User != nil {
		item.Username = c.User.Username
	}
	return item
}
