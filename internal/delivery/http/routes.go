package http

import (
	"github.com/gin-gonic/gin"
	"github.com/quotesync/backend/config"
	"github.com/quotesync/backend/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/sync", handler.Sync)
		v1.POST("/aggregate", handler.Aggregate)
		v1.GET("/stats", handler.Stats)

		products := v1.Group("/products")
		{
			products.GET("/lookup", handler.LookupProduct)
			products.GET("/no-code", handler.ProductsWithoutCode)
		}
	}

	return router
}
