package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register 注册用户，默认公开主页
// @Summary 注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录换取 token
// @Summary 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "username": user.Username})
}

// Me 当前登录用户资料
// @Summary 当前用户
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"profile_status":  user.ProfileStatus,
		"follower_count":  user.FollowerCount,
		"following_count": user.FollowingCount,
	})
}

type profileStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=public private"`
}

// SetProfileStatus 公开/私密切换
// @Summary 设置主页可见性
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body profileStatusRequest true "目标状态"
// @Success 200 {object} response.Response
// @Router /api/v1/users/me/profile-status [put]
func (h *Handler) SetProfileStatus(c *gin.Context) {
	var req profileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.users.SetProfileStatus(c.Request.Context(), user, req.Status); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "profile status updated")
}

// GetUser 按用户名查公开资料
// @Summary 查用户
// @Tags 用户
// @Param username path string true "用户名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"username":        user.Username,
		"profile_status":  user.ProfileStatus,
		"follower_count":  user.FollowerCount,
		"following_count": user.FollowingCount,
	})
}
