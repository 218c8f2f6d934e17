package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/wisdomindex/wealth_service/internal/api/handlers"
	"github.com/wisdomindex/wealth_service/internal/api/middleware"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/domain/services/insights"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/config"
	"github.com/wisdomindex/wealth_service/pkg/health"
	"github.com/wisdomindex/wealth_service/pkg/logger"
	"github.com/wisdomindex/wealth_service/pkg/ratelimit"
	"github.com/wisdomindex/wealth_service/pkg/tracing"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Engine      *metrics.Engine
	Targets     *targets.Service
	Insights    *insights.Service
	Facts       repositories.FactRepository
	Users       repositories.UserRepository
	Health      *health.Registry
	RateLimiter ratelimit.Limiter // optional Redis-backed limiter
}

// SetupRoutes configures all application routes
func SetupRoutes(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	if deps.RateLimiter != nil {
		router.Use(middleware.DistributedRateLimit(deps.RateLimiter, deps.Logger))
	} else {
		router.Use(middleware.RateLimit(deps.Config.Server.RateLimitPerMin))
	}

	healthHandler := handlers.NewHealthHandler(deps.Health)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Config, deps.Logger)
	metricHandler := handlers.NewMetricHandler(deps.Engine, deps.Targets, deps.Logger)
	chartHandler := handlers.NewChartHandler(deps.Engine, deps.Logger)
	targetHandler := handlers.NewTargetHandler(deps.Targets, deps.Logger)
	insightHandler := handlers.NewInsightHandler(deps.Insights, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Engine, deps.Targets, deps.Facts, deps.Logger)

	// Operational endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/version", handlers.Version)
	router.GET("/metrics", handlers.Metrics())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Household routes, scoped by the client_id claim
		user := v1.Group("")
		user.Use(middleware.Authentication(deps.Config, deps.Logger))
		{
			user.GET("/me", authHandler.Me)

			user.GET("/metrics/catalog", metricHandler.GetCatalog)
			user.GET("/metrics/all", metricHandler.GetAllMetrics)
			user.GET("/metrics/:name", metricHandler.GetMetric)

			user.GET("/charts/income", chartHandler.IncomeChart)
			user.GET("/charts/expenses", chartHandler.ExpenseChart)
			user.GET("/charts/allocation", chartHandler.AllocationChart)

			user.GET("/targets", targetHandler.GetTargets)
			user.PUT("/targets", targetHandler.SetTargets)
			user.DELETE("/targets", targetHandler.DeleteTargets)
			user.GET("/targets/:metric", targetHandler.GetTarget)
			user.PUT("/targets/:metric", targetHandler.SetTarget)
			user.DELETE("/targets/:metric", targetHandler.DeleteTarget)

			user.GET("/insights/latest", insightHandler.GetLatest)
			user.POST("/insights/generate", insightHandler.Generate)
		}

		// Advisor routes, admin role required
		admin := v1.Group("/admin")
		admin.Use(middleware.Authentication(deps.Config, deps.Logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/clients", adminHandler.ListClients)
			admin.GET("/clients/key-metrics", adminHandler.GetKeyMetrics)
			admin.GET("/clients/:client_id/metrics", adminHandler.GetClientMetrics)
			admin.GET("/clients/:client_id/targets", adminHandler.GetClientTargets)
			admin.PUT("/clients/:client_id/targets/:metric", adminHandler.SetClientTarget)
			admin.DELETE("/clients/:client_id/targets/:metric", adminHandler.DeleteClientTarget)
		}
	}

	return router
}
