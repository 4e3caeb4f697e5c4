package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/server"
	"github.com/noah-isme/policy-digest-api/pkg/config"
	"github.com/noah-isme/policy-digest-api/pkg/logger"
)

// @title Policy Digest API
// @version 1.0.0
// @description Policy risk analysis: dashboard, documents, version history, alert settings and browser extension data.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := server.OpenStores(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	srv, err := server.New(ctx, cfg, logr, stores, server.ConnectCache(ctx, cfg, logr))
	if err != nil {
		_ = stores.Close()
		logr.Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logr.Info("server stopped")
}
