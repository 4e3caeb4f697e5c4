package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/policy-digest-api/api/swagger"
	"github.com/noah-isme/policy-digest-api/internal/handler"
	"github.com/noah-isme/policy-digest-api/internal/middleware"
	"github.com/noah-isme/policy-digest-api/internal/service"
	"github.com/noah-isme/policy-digest-api/pkg/config"
	"github.com/noah-isme/policy-digest-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/policy-digest-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/policy-digest-api/pkg/middleware/requestid"
)

type handlers struct {
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	documents *handler.DocumentHandler
	extension *handler.ExtensionHandler
	settings  *handler.SettingsHandler
	health    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, auth *service.AuthService, h handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.health.Health)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", h.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.JWT(auth)
	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.auth.Login)
	authGroup.GET("/me", requireAuth, h.auth.Me)
	authGroup.POST("/logout", requireAuth, h.auth.Logout)

	api.GET("/dashboard", h.dashboard.Summary)

	docs := api.Group("/documents")
	docs.GET("", h.documents.List)
	docs.POST("/export", requireAuth, middleware.Audit(logr, "export", "documents"), h.documents.Export)
	docs.GET("/:id", h.documents.Get)
	docs.GET("/:id/history", h.documents.History)
	api.GET("/export/:token", h.documents.Download)

	ext := api.Group("/extension")
	ext.GET("/page", h.extension.Page)
	ext.GET("/popup", h.extension.Popup)
	ext.GET("/highlights", h.extension.Highlights)
	ext.POST("/scans", h.extension.StartScan)
	ext.GET("/scans/:id", h.extension.GetScan)
	ext.DELETE("/scans/:id", h.extension.CancelScan)

	settings := api.Group("/settings", requireAuth)
	settings.GET("", h.settings.Get)
	settings.PATCH("", middleware.Audit(logr, "update", "alert_settings"), h.settings.Update)

	return r
}
