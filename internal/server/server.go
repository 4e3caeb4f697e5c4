package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/handler"
	"github.com/noah-isme/policy-digest-api/internal/models"
	"github.com/noah-isme/policy-digest-api/internal/repository"
	"github.com/noah-isme/policy-digest-api/internal/seed"
	"github.com/noah-isme/policy-digest-api/internal/service"
	"github.com/noah-isme/policy-digest-api/pkg/cache"
	"github.com/noah-isme/policy-digest-api/pkg/config"
	"github.com/noah-isme/policy-digest-api/pkg/storage"
)

// Server owns the HTTP engine and the background workers behind it.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	engine *gin.Engine

	stores    *Stores
	cacheRepo *repository.CacheRepository
	scans     *service.ScanService
	exports   *service.ExportService
	dashboard *service.DashboardService
}

// SeedDemo loads the mock dataset and the demo account into stores.
func SeedDemo(ctx context.Context, stores *Stores, demo config.DemoUserConfig, now time.Time) error {
	hash, err := service.HashPassword(demo.Password)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	user := models.User{
		ID:           demo.ID,
		Email:        demo.Email,
		PasswordHash: hash,
		FullName:     demo.FullName,
		CreatedAt:    now,
	}
	return seed.Load(ctx, seed.Targets{Documents: stores.Documents, Versions: stores.Versions, Users: stores.Users}, user, now)
}

// ConnectCache opens Redis when caching is enabled. A failed connection is
// logged and caching falls back to disabled.
func ConnectCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	return client
}

// New builds every service over stores and registers the routes. The memory
// backend is seeded with the demo dataset.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, stores *Stores, redisClient *redis.Client) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stores.Driver == config.StoreMemory {
		if err := SeedDemo(ctx, stores, cfg.DemoUser, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.DefaultTTL, logger, redisClient != nil)

	documents := service.NewDocumentService(stores.Documents, logger)
	history := service.NewHistoryService(documents, stores.Versions, logger)
	dashboard := service.NewDashboardService(documents, cacheSvc, logger, service.DashboardServiceConfig{
		CacheTTL:     cfg.Dashboard.CacheTTL,
		RecentLimit:  cfg.Dashboard.RecentLimit,
		ConcernLimit: cfg.Dashboard.ConcernLimit,
	})
	extension := service.NewExtensionService(documents, logger)
	scans := service.NewScanService(extension, metrics, logger, service.ScanServiceConfig{
		Delay:      cfg.Scan.Delay,
		Timeout:    cfg.Scan.Timeout,
		Workers:    cfg.Scan.Workers,
		BufferSize: cfg.Scan.BufferSize,
	})
	settings := service.NewSettingsService(stores.Settings, seed.AlertSettings(), validate, logger)
	auth := service.NewAuthService(stores.Users, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	exports := service.NewExportService(documents, files,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		metrics, logger, service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL})

	checks := map[string]handler.ReadinessCheck{"store": stores.Ping}
	if redisClient != nil {
		checks["cache"] = cacheRepo.Ping
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		stores:    stores,
		cacheRepo: cacheRepo,
		scans:     scans,
		exports:   exports,
		dashboard: dashboard,
	}
	s.engine = newRouter(cfg, logger, metrics, auth, handlers{
		auth:      handler.NewAuthHandler(auth),
		dashboard: handler.NewDashboardHandler(dashboard),
		documents: handler.NewDocumentHandler(documents, history, exports),
		extension: handler.NewExtensionHandler(extension, scans),
		settings:  handler.NewSettingsHandler(settings),
		health:    handler.NewMetricsHandler(metrics, checks),
	})
	return s, nil
}

// Handler exposes the HTTP engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start launches the scan workers and the export cleanup loop. Both stop
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	s.scans.Run(ctx)
	go s.cleanupExports(ctx)
}

// Run serves HTTP until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.Start(ctx)
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", s.cfg.Env), zap.String("store", s.stores.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the workers and releases connections.
func (s *Server) Close() {
	s.scans.Stop()
	if err := s.cacheRepo.Close(); err != nil {
		s.logger.Warn("close cache", zap.Error(err))
	}
	if err := s.stores.Close(); err != nil {
		s.logger.Warn("close store", zap.Error(err))
	}
}

func (s *Server) cleanupExports(ctx context.Context) {
	interval := s.cfg.Exports.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.exports.Cleanup(0); err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
