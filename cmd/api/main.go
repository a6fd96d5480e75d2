package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge-recipes/internal/api"
	"fridge-recipes/internal/api/handlers/health"
	"fridge-recipes/internal/api/middleware"
	"fridge-recipes/internal/core/ai/openrouter"
	"fridge-recipes/internal/core/ai/vision"
	"fridge-recipes/internal/core/geo"
	"fridge-recipes/internal/core/image"
	"fridge-recipes/internal/core/pricing"
	"fridge-recipes/internal/core/recipe"
	"fridge-recipes/internal/core/recipe/cache"
	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// logger needs the configured level and directory
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("Configuration loaded",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("vision_api_key", config.MaskAPIKey(cfg.Vision.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.Int("recipe_cache_size", cfg.Cache.MaxSize),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	recipeCache := cache.NewManager(cfg.Cache.MaxSize)
	defer recipeCache.Close()

	var assemblerOpts []recipe.Option
	var sharedPinger health.Pinger
	if cfg.Cache.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.Redis)
		if err != nil {
			// continue with the memory tier only
			common.LogWarn("Shared recipe cache unavailable", zap.Error(err))
		} else {
			defer store.Close()
			assemblerOpts = append(assemblerOpts, recipe.WithSharedStore(store))
			sharedPinger = store
		}
	}

	estimator := pricing.NewEstimator(
		pricing.DefaultPriceTable(),
		pricing.DefaultRegionMultipliers(),
		pricing.NewRegionResolver(geo.NewBigDataCloudClient(cfg.Geocoder)),
	)
	assembler := recipe.NewAssembler(openrouter.NewClient(cfg.OpenRouter), estimator, recipeCache, assemblerOpts...)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	go dedup.Run(ctx, 10*time.Minute)

	router := api.SetupRouter(cfg, api.Dependencies{
		Images:       image.NewService(cfg.Image.MaxSizeBytes),
		Detector:     vision.NewClient(cfg.Vision),
		Assembler:    assembler,
		CacheStats:   assembler.CacheStats,
		SharedCache:  sharedPinger,
		Deduplicator: dedup,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("Starting application",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
