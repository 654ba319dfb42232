package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/pkg/response"
)

type postRequest struct {
	Caption  string   `json:"caption" binding:"required,max=2000"`
	Mentions []string `json:"mentions" binding:"omitempty,dive,username"`
}

// CreatePost 发帖，提及的用户收到通知
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body postRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), user, req.Caption, req.Mentions)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": post.ID})
}

// UpdatePost 编辑帖子，提及差量决定撤回与新发的通知
// @Summary 编辑帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body postRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), user, c.Param("id"), req.Caption, req.Mentions)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": post.ID})
}

// GetPost 查帖子
// @Summary 查帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, post)
}

// LikePost 点赞，作者收到通知（自赞不通知）
// @Summary 点赞帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) LikePost(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.postLikes.Like(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "liked")
}

// UnlikePost 取消赞并撤回对应通知
// @Summary 取消赞
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/like [delete]
func (h *Handler) UnlikePost(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.postLikes.Unlike(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "unliked")
}

// PostLikeStatus 当前用户是否赞过
// @Summary 点赞状态
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/like [get]
func (h *Handler) PostLikeStatus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	liked, err := h.postLikes.LikeStatus(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// SavePost 收藏帖子
// @Summary 收藏
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/save [post]
func (h *Handler) SavePost(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.savedPosts.Save(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "saved")
}

// UnsavePost 取消收藏
// @Summary 取消收藏
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/save [delete]
func (h *Handler) UnsavePost(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.savedPosts.Unsave(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "unsaved")
}

type commentRequest struct {
	Text     string  `json:"text" binding:"required,max=1000"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

// CreateComment 评论；一级评论通知作者，回复不通知
// @Summary 评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), user, c.Param("id"), req.Text, req.ParentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": comment.ID})
}

// ListComments 评论树，一级分页、回复内嵌
// @Summary 评论列表
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, limit := pageParams(c)
	list, err := h.comments.List(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// LikeComment 评论点赞，不产生通知
// @Summary 点赞评论
// @Tags 帖子
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/comments/{id}/like [post]
func (h *Handler) LikeComment(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.commentLikes.Like(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "liked")
}

// UnlikeComment 取消评论点赞
// @Summary 取消评论点赞
// @Tags 帖子
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/comments/{id}/like [delete]
func (h *Handler) UnlikeComment(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.commentLikes.Unlike(c.Request.Context(), user, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "unliked")
}
