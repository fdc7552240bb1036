package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lingua/api-gateway/config"
	"github.com/lingua/api-gateway/handlers"
	"go.uber.org/zap"
)

// SetupRoutes configures all routes for the API Gateway
func SetupRoutes(router *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	// "/api/gateway" must reach the resolver and get its 404, not a redirect.
	router.RedirectTrailingSlash = false

	// Health check endpoints (no authentication required)
	health := handlers.NewHealthHandler(cfg.ServiceURLs(), logger)
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)
	router.GET("/health/live", health.Live)

	proxy := handlers.NewProxyHandler(cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/public/status", health.Status)
		api.Any("/gateway/*rest", proxy.Handle)
	}

	// Everything else is answered by the gateway's route resolver
	router.NoRoute(proxy.Handle)
}
