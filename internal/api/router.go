package api

import (
	"time"

	"fridge-recipes/internal/api/handlers/health"
	recipeHandler "fridge-recipes/internal/api/handlers/recipe"
	"fridge-recipes/internal/api/middleware"
	"fridge-recipes/internal/core/recipe"
	"fridge-recipes/internal/core/recipe/cache"
	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the services the routes are built from.
type Dependencies struct {
	Images       recipeHandler.ImageDecoder
	Detector     recipe.LabelDetector
	Assembler    recipeHandler.RecipeAssembler
	CacheStats   func() cache.Stats
	SharedCache  health.Pinger
	Deduplicator *middleware.Deduplicator
}

// SetupRouter builds the gin engine.
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())
	router.Use(metrics.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	healthHandler := health.NewHandler(cfg.App.Version, deps.CacheStats, deps.SharedCache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		fridge := recipeHandler.NewHandler(deps.Images, deps.Detector, deps.Assembler)

		recipeGroup := api.Group("/recipes")
		if deps.Deduplicator != nil {
			recipeGroup.Use(deps.Deduplicator.Middleware())
		}
		recipeGroup.POST("/fridge", fridge.HandleFridgeScan)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("shared_cache", deps.SharedCache != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
