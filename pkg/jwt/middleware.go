package jwt

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-graph/pkg/response"
)

const (
	// ContextUserIDKey 当前登录用户ID在 gin.Context 中的键
	ContextUserIDKey = "user_id"
	// ContextUsernameKey 当前登录用户名在 gin.Context 中的键
	ContextUsernameKey = "username"
)

// AuthMiddleware 解析 Authorization: Bearer <token> 并注入用户信息
func (s *Service) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := s.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
