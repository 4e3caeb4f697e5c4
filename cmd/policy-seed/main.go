package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/repository"
	"github.com/noah-isme/policy-digest-api/internal/server"
	"github.com/noah-isme/policy-digest-api/internal/service"
	"github.com/noah-isme/policy-digest-api/pkg/config"
	"github.com/noah-isme/policy-digest-api/pkg/logger"
)

// policy-seed migrates the Postgres schema, loads the demo dataset and
// account, and drops any cached dashboard built from older data.
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg.Store.Driver = config.StorePostgres
	stores, err := server.OpenStores(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open postgres", zap.Error(err))
	}
	defer stores.Close() //nolint:errcheck

	if err := server.SeedDemo(ctx, stores, cfg.DemoUser, time.Now().UTC()); err != nil {
		logr.Fatal("failed to seed dataset", zap.Error(err))
	}
	logr.Info("dataset seeded", zap.String("demo_user", cfg.DemoUser.Email))

	client := server.ConnectCache(ctx, cfg, logr)
	if client == nil {
		return
	}
	cacheRepo := repository.NewCacheRepository(client, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, nil, cfg.Cache.DefaultTTL, logr, true)
	dashboard := service.NewDashboardService(nil, cacheSvc, logr, service.DashboardServiceConfig{})
	if err := dashboard.Invalidate(ctx); err != nil {
		logr.Warn("failed to invalidate dashboard cache", zap.Error(err))
		return
	}
	logr.Info("dashboard cache invalidated")
}
