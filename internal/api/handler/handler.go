package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/jwt"
	"github.com/d60-Lab/social-graph/pkg/response"
)

// Handler 聚合各业务服务，按资源拆文件
type Handler struct {
	users         service.UserService
	relations     service.RelationService
	notifications service.NotificationService
	posts         service.PostService
	postLikes     service.PostLikeService
	comments      service.CommentService
	commentLikes  service.CommentLikeService
	savedPosts    service.SavedPostService
}

func NewHandler(
	users service.UserService,
	relations service.RelationService,
	notifications service.NotificationService,
	posts service.PostService,
	postLikes service.PostLikeService,
	comments service.CommentService,
	commentLikes service.CommentLikeService,
	savedPosts service.SavedPostService,
) *Handler {
	return &Handler{
		users:         users,
		relations:     relations,
		notifications: notifications,
		posts:         posts,
		postLikes:     postLikes,
		comments:      comments,
		commentLikes:  commentLikes,
		savedPosts:    savedPosts,
	}
}

// currentUser 从认证中间件写入的 user_id 取当前用户
func (h *Handler) currentUser(c *gin.Context) (*model.User, bool) {
	userID := c.GetString(jwt.ContextUserIDKey)
	if userID == "" {
		response.Unauthorized(c, "not logged in")
		return nil, false
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return user, true
}

// fail 哨兵错误映射为 HTTP 状态
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrBadRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
