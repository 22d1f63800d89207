// Package main runs the EDUUB video upload and QA HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Manoranjanhere/EDUUB/config"
	"github.com/Manoranjanhere/EDUUB/internal/middleware"
	"github.com/Manoranjanhere/EDUUB/internal/qa"
	"github.com/Manoranjanhere/EDUUB/internal/transcoder"
	"github.com/Manoranjanhere/EDUUB/internal/transcriber"
	"github.com/Manoranjanhere/EDUUB/internal/videos"
	"github.com/Manoranjanhere/EDUUB/pkg/database"
	"github.com/Manoranjanhere/EDUUB/pkg/redis"
	"github.com/Manoranjanhere/EDUUB/pkg/response"
	"github.com/Manoranjanhere/EDUUB/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Media.TempDir, 0o755); err != nil {
		logger.Fatal("create temp dir", zap.Error(err), zap.String("dir", cfg.Media.TempDir))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	mediaStore, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		MediaBucket:     cfg.AWS.MediaBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	// Redis is optional; without it QA answers are simply not cached.
	var answerCache qa.AnswerCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("answer cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			answerCache = qa.NewRedisAnswerCache(rdb)
		}
	}

	extractor := transcoder.NewFFmpeg(cfg.Media.FFmpegPath, logger)
	stt := transcriber.NewWhisper(cfg.Media.WhisperCommand, cfg.Media.WhisperScript, logger)

	// Videos
	videoRepo := videos.NewRepository(pool)
	videoService := videos.NewService(videoRepo, mediaStore, extractor, stt, cfg.Media.TempDir, logger)
	videoHandler := videos.NewHandler(videoService, cfg.Media.TempDir, logger)

	// QA
	chatClient := qa.NewChatClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	qaService := qa.NewService(videoRepo, chatClient, cfg.LLM.Model, answerCache, logger)
	qaHandler := qa.NewHandler(qaService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.POST("/upload", videoHandler.Upload)
	router.GET("/videos", videoHandler.List)
	router.DELETE("/videos/:id", videoHandler.Delete)
	router.POST("/qa", qaHandler.Ask)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
