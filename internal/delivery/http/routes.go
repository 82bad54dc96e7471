package http

import (
	"github.com/gin-gonic/gin"
	"github.com/medalt/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if maxBytes := cfg.Upload.MaxBytes(); maxBytes > 0 {
		router.MaxMultipartMemory = maxBytes
	}

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/uploads/:filename", handler.ServeUpload)

	limited := router.Group("/")
	if cfg.RateLimit.PerIP > 0 && cfg.RateLimit.Burst > 0 {
		limited.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	}

	// Routes kept for existing mobile clients
	limited.POST("/predict", handler.SearchAlternatives)
	limited.POST("/upload", handler.Upload)

	v1 := limited.Group("/api/v1")
	{
		v1.POST("/alternatives/search", handler.SearchAlternatives)
		v1.GET("/catalog/stats", handler.CatalogStats)
	}

	return router
}
