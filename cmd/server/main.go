package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/api"
	"github.com/d60-Lab/social-graph/internal/api/handler"
	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/database"
	"github.com/d60-Lab/social-graph/pkg/jwt"
	"github.com/d60-Lab/social-graph/pkg/logger"
	"github.com/d60-Lab/social-graph/pkg/tracing"
)

// @title Social Graph API
// @version 1.0
// @description 关系状态机与通知扇出服务
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.Server.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gin.SetMode(cfg.Server.Mode)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			log.Fatal("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Otel, "social-graph")
	if err != nil {
		log.Fatal("tracing init failed", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var unread *cache.UnreadCache
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, unread counts uncached", zap.Error(err))
	} else {
		unread = cache.NewUnreadCache(rdb, cfg.Redis.TTL)
	}

	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userNotifRepo := repository.NewUserNotificationRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	postLikeRepo := repository.NewPostLikeRepository(db)
	commentLikeRepo := repository.NewCommentLikeRepository(db)
	savedPostRepo := repository.NewSavedPostRepository(db)

	fanout := service.NewFanout(relationRepo, userNotifRepo, unread)
	notifier := service.NewNotifier(notifRepo, userRepo, relationRepo, fanout)
	events := service.NewDispatcher()
	events.Register(notifier.Handle)

	jwtSvc := jwt.NewService(cfg.JWT)
	userSvc := service.NewUserService(userRepo, jwtSvc)
	relationSvc := service.NewRelationService(db, userRepo, relationRepo, events)
	notificationSvc := service.NewNotificationService(notifRepo, userNotifRepo, relationRepo, unread)
	postSvc := service.NewPostService(db, postRepo, userRepo, relationRepo, events)
	postLikeSvc := service.NewPostLikeService(db, postSvc, postLikeRepo, postRepo, events)
	commentSvc := service.NewCommentService(db, postSvc, commentRepo, postRepo, events)
	commentLikeSvc := service.NewCommentLikeService(db, commentRepo, commentLikeRepo)
	savedPostSvc := service.NewSavedPostService(postSvc, savedPostRepo)

	h := handler.NewHandler(userSvc, relationSvc, notificationSvc, postSvc, postLikeSvc, commentSvc, commentLikeSvc, savedPostSvc)
	router := api.NewRouter(h, jwtSvc)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
