package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/pkg/response"
)

// RelationStatus 当前用户对目标用户的关系状态
// @Summary 查关系状态
// @Tags 关系
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{username}/status [get]
func (h *Handler) RelationStatus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	status, err := h.relations.GetStatus(c.Request.Context(), user, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"status":  status,
		"display": model.ToDisplayStatus(status),
	})
}

// Follow 关注目标用户，私密主页落为待处理请求
// @Summary 关注
// @Tags 关系
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	status, err := h.relations.Follow(c.Request.Context(), user, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// Unfollow 取关或撤回待处理请求
// @Summary 取关
// @Tags 关系
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/{username}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.Unfollow(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "unfollowed")
}

// AcceptRequest 接受对方的关注请求
// @Summary 接受关注请求
// @Tags 关系
// @Param username path string true "请求方用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/requests/{username}/accept [post]
func (h *Handler) AcceptRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.AcceptRequest(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "request accepted")
}

// RejectRequest 拒绝对方的关注请求
// @Summary 拒绝关注请求
// @Tags 关系
// @Param username path string true "请求方用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/requests/{username}/reject [post]
func (h *Handler) RejectRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.RejectRequest(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "request rejected")
}

// DeleteFollower 把对方从自己的粉丝里移除
// @Summary 移除粉丝
// @Tags 关系
// @Param username path string true "粉丝用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/followers/{username} [delete]
func (h *Handler) DeleteFollower(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.DeleteFollower(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "follower removed")
}

// Block 拉黑目标用户，双向清边并撤回双向通知
// @Summary 拉黑
// @Tags 关系
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/{username}/block [post]
func (h *Handler) Block(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.Block(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "blocked")
}

// Unblock 解除拉黑
// @Summary 解除拉黑
// @Tags 关系
// @Param username path string true "目标用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/{username}/block [delete]
func (h *Handler) Unblock(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.Unblock(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "unblocked")
}

// AddCloseFriend 把现有粉丝标记为密友
// @Summary 加密友
// @Tags 关系
// @Param username path string true "粉丝用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/close-friends/{username} [post]
func (h *Handler) AddCloseFriend(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.AddCloseFriend(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "close friend added")
}

// RemoveCloseFriend 密友降回普通粉丝，不产生新关注通知
// @Summary 移除密友
// @Tags 关系
// @Param username path string true "粉丝用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/close-friends/{username} [delete]
func (h *Handler) RemoveCloseFriend(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.relations.RemoveCloseFriend(c.Request.Context(), user, c.Param("username")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "close friend removed")
}

// Followers 目标用户的粉丝列表
// @Summary 粉丝列表
// @Tags 关系
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/relations/{username}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.relations.FollowerList(c.Request.Context(), user, c.Param("username"), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// Followings 目标用户的关注列表
// @Summary 关注列表
// @Tags 关系
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/relations/{username}/followings [get]
func (h *Handler) Followings(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.relations.FollowingList(c.Request.Context(), user, c.Param("username"), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// CloseFriends 当前用户的密友列表
// @Summary 密友列表
// @Tags 关系
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/relations/close-friends [get]
func (h *Handler) CloseFriends(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.relations.CloseFriendList(c.Request.Context(), user, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// Blocked 当前用户拉黑的人
// @Summary 黑名单
// @Tags 关系
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/relations/blocked [get]
func (h *Handler) Blocked(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	list, err := h.relations.BlockList(c.Request.Context(), user, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}
