package api

import (
	"net/http"
	"regexp"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	_ "github.com/d60-Lab/social-graph/docs"
	"github.com/d60-Lab/social-graph/internal/api/handler"
	"github.com/d60-Lab/social-graph/pkg/jwt"
	"github.com/d60-Lab/social-graph/pkg/logger"
	"github.com/d60-Lab/social-graph/pkg/response"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.]{1,64}$`)

// rateLimit 全局令牌桶，超限直接 429
func rateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "too many requests"})
			return
		}
		c.Next()
	}
}

// NewRouter 组装中间件与路由
func NewRouter(h *handler.Handler, jwtSvc *jwt.Service) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(otelgin.Middleware("social-graph"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(rateLimit(100, 200))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)

		authed := users.Group("")
		authed.Use(jwtSvc.AuthMiddleware())
		{
			authed.GET("/me", h.Me)
			authed.PUT("/me/profile-status", h.SetProfileStatus)
			authed.GET("/:username", h.GetUser)
		}
	}

	relations := v1.Group("/relations")
	relations.Use(jwtSvc.AuthMiddleware())
	{
		relations.GET("/close-friends", h.CloseFriends)
		relations.GET("/blocked", h.Blocked)
		relations.POST("/close-friends/:username", h.AddCloseFriend)
		relations.DELETE("/close-friends/:username", h.RemoveCloseFriend)
		relations.POST("/requests/:username/accept", h.AcceptRequest)
		relations.POST("/requests/:username/reject", h.RejectRequest)
		relations.DELETE("/followers/:username", h.DeleteFollower)
		relations.GET("/:username/status", h.RelationStatus)
		relations.POST("/:username/follow", h.Follow)
		relations.DELETE("/:username/follow", h.Unfollow)
		relations.POST("/:username/block", h.Block)
		relations.DELETE("/:username/block", h.Unblock)
		relations.GET("/:username/followers", h.Followers)
		relations.GET("/:username/followings", h.Followings)
	}

	notifications := v1.Group("/notifications")
	notifications.Use(jwtSvc.AuthMiddleware())
	{
		notifications.GET("", h.Notifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.GET("/followings", h.FollowingsFeed)
		notifications.GET("/followings/unread-count", h.UnreadFollowingsCount)
	}

	posts := v1.Group("/posts")
	posts.Use(jwtSvc.AuthMiddleware())
	{
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", h.UpdatePost)
		posts.GET("/:id/like", h.PostLikeStatus)
		posts.POST("/:id/like", h.LikePost)
		posts.DELETE("/:id/like", h.UnlikePost)
		posts.POST("/:id/save", h.SavePost)
		posts.DELETE("/:id/save", h.UnsavePost)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", h.CreateComment)
	}

	comments := v1.Group("/comments")
	comments.Use(jwtSvc.AuthMiddleware())
	{
		comments.POST("/:id/like", h.LikeComment)
		comments.DELETE("/:id/like", h.UnlikeComment)
	}

	return r
}
