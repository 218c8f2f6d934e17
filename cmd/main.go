package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/wisdomindex/wealth_service/internal/api/routes"
	"github.com/wisdomindex/wealth_service/internal/domain/services/insights"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/ai"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/config"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/database"
	infrarepos "github.com/wisdomindex/wealth_service/internal/infrastructure/repositories"
	insightscheduler "github.com/wisdomindex/wealth_service/internal/workers/insight_scheduler"
	"github.com/wisdomindex/wealth_service/pkg/health"
	"github.com/wisdomindex/wealth_service/pkg/logger"
	"github.com/wisdomindex/wealth_service/pkg/ratelimit"
	"github.com/wisdomindex/wealth_service/pkg/tracing"
	"github.com/wisdomindex/wealth_service/pkg/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)
	log.Info("Starting wealth service", "version", version.Version)

	// Initialize tracing
	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		ServiceName:    "wealth_service",
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	// Initialize database
	db, err := database.NewConnection(cfg.Database, log.Zap())
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database, log.Zap()); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize Redis (optional; used for distributed rate limiting)
	var redisClient redis.UniversalClient
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rc.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-process rate limiting", "error", err)
		rc.Close()
	} else {
		redisClient = rc
		defer rc.Close()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	factRepo := infrarepos.NewFactRepository(db, log.Zap())
	targetRepo := infrarepos.NewTargetRepository(db, log.Zap())
	userRepo := infrarepos.NewUserRepository(db, log.Zap())
	insightRepo := infrarepos.NewInsightRepository(db, log.Zap())

	// Services
	engine := metrics.NewEngine(factRepo, log.Zap())
	targetSvc := targets.NewService(targetRepo, log.Zap())

	provider := ai.NewOpenAIProvider(ai.ProviderConfig{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     time.Duration(cfg.AI.TimeoutSecs) * time.Second,
	}, log.Zap())
	insightSvc := insights.NewService(engine, provider, insightRepo, log.Zap())

	// Insight pre-generation scheduler
	scheduler, err := insightscheduler.NewScheduler(insightSvc, factRepo, cfg.Insights, log.Zap())
	if err != nil {
		log.Fatal("Failed to create insight scheduler", "error", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start insight scheduler", "error", err)
	}

	// Health checks
	healthRegistry := health.NewRegistry(10 * time.Second)
	healthRegistry.Register(health.NewDatabaseChecker(db, 5*time.Second))
	if redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(redisClient, 5*time.Second))
	}

	// Rate limiting
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.PerIPLimiter(redisClient,
			int64(cfg.Server.RateLimitPerMin), time.Minute, log.Zap())
	}

	router := routes.SetupRoutes(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Engine:      engine,
		Targets:     targetSvc,
		Insights:    insightSvc,
		Facts:       factRepo,
		Users:       userRepo,
		Health:      healthRegistry,
		RateLimiter: limiter,
	})

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	scheduler.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	if err := shutdownTracing(ctx); err != nil {
		log.Warn("Error shutting down tracing", "error", err)
	}

	log.Info("Server exited")
}
