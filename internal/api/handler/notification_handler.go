package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/pkg/response"
)

// Notifications 主通知流，返回即标记本页已读
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.notifications.List(c.Request.Context(), user, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// FollowingsFeed 关注动态流：关注的人收到的赞/评论/新粉丝
// @Summary 关注动态流
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/followings [get]
func (h *Handler) FollowingsFeed(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.notifications.FollowingsFeed(c.Request.Context(), user, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// UnreadCount 主通知流未读数
// @Summary 未读数
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// UnreadFollowingsCount 关注动态流未读数
// @Summary 关注动态未读数
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/followings/unread-count [get]
func (h *Handler) UnreadFollowingsCount(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadFollowingsCount(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}
