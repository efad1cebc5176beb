package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/campus-ops/lostfound-api/api/swagger"
	"github.com/campus-ops/lostfound-api/internal/handler"
	"github.com/campus-ops/lostfound-api/internal/repository"
	"github.com/campus-ops/lostfound-api/internal/service"
	"github.com/campus-ops/lostfound-api/pkg/cache"
	"github.com/campus-ops/lostfound-api/pkg/config"
	"github.com/campus-ops/lostfound-api/pkg/database"
	"github.com/campus-ops/lostfound-api/pkg/logger"
	"github.com/campus-ops/lostfound-api/pkg/storage"
)

// @title Campus Lost & Found API
// @version 1.0.0
// @description Report found items, submit ownership claims, and review them
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := database.Migrate(cfg.Database); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ItemListTTL, logr, true)
	}

	photoStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	photoSigner := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	claimRepo := repository.NewClaimRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)
	itemSvc := service.NewItemService(itemRepo, photoStore, photoSigner, cacheSvc, validate, logr, service.ItemServiceConfig{
		MaxPhotoSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:      cfg.Uploads.AllowedMIMEs,
		ListCacheTTL:      cfg.Cache.ItemListTTL,
	})
	claimSvc := service.NewClaimService(claimRepo, itemRepo, itemSvc, validate, logr)

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  logr,
		Auth:    handler.NewAuthHandler(authSvc),
		Users:   handler.NewUserHandler(userSvc),
		Items:   handler.NewItemHandler(itemSvc),
		Claims:  handler.NewClaimHandler(claimSvc),
		AuthSvc: authSvc,
		Metrics: metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
