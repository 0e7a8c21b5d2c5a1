package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nagarajgmcs24/fwdproject/internal/api/handler"
	"github.com/nagarajgmcs24/fwdproject/internal/attachment"
	"github.com/nagarajgmcs24/fwdproject/internal/complaint"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/feed"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"
	"github.com/nagarajgmcs24/fwdproject/internal/metrics"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"github.com/nagarajgmcs24/fwdproject/internal/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setupDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect Redis", zap.Error(err))
	}

	logger.Info("database and Redis connections established")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Stores
	db, rdb := setupDependencies(ctx, cfg, logger)
	s := storage.NewStorageService(db, rdb, logger.Named("storage"))
	if err := s.AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	store, err := attachment.NewS3Store(ctx, attachment.S3Options{
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
	})
	if err != nil {
		logger.Fatal("failed to configure attachment store", zap.Error(err))
	}

	// 2. Services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramOperatorChatID, logger.Named("telegram"))
	if err != nil {
		logger.Fatal("failed to start telegram notifier", zap.Error(err))
	}

	complaints := complaint.NewService(s, store, notifier, collector, logger.Named("complaint"))
	complaints.Bucket = cfg.S3Bucket

	localizer, err := localization.NewLocalizer()
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	hub := feed.NewHub(s, collector, logger.Named("feed"))
	go hub.Run(ctx)

	var reclassifier *complaint.Reclassifier
	if cfg.ReclassifySchedule != "" {
		reclassifier, err = complaint.NewReclassifier(complaints, cfg.ReclassifySchedule)
		if err != nil {
			logger.Fatal("failed to schedule reclassifier", zap.Error(err))
		}
		reclassifier.Start()
	}

	// 3. HTTP
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.CORSMiddleware(), handler.RequestIDMiddleware(), handler.LoggingMiddleware(logger.Named("http")))
	r.MaxMultipartMemory = cfg.MaxUploadBytes + 1<<20

	h := handler.NewHandler(complaints, s, hub, localizer, logger.Named("api"))
	h.JWTSecret = []byte(cfg.JWTSecret)
	h.MaxUploadBytes = cfg.MaxUploadBytes
	h.RegisterRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		if err := s.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if reclassifier != nil {
		reclassifier.Stop()
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("failed to close Redis", zap.Error(err))
	}
}
