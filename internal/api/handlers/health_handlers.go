package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wisdomindex/wealth_service/pkg/health"
	"github.com/wisdomindex/wealth_service/pkg/version"
)

var startTime = time.Now()

// HealthHandler serves liveness, readiness, and deep health endpoints.
type HealthHandler struct {
	registry *health.Registry
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(registry *health.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Health runs every registered component check and reports overall status.
func (h *HealthHandler) Health(c *gin.Context) {
	status, checks := h.registry.Check(c.Request.Context())

	statusCode := http.StatusOK
	if status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health.Response{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version.Version,
		Checks:    checks,
	})
}

// Ready reports whether the service can serve traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	status, checks := h.registry.Check(c.Request.Context())

	ready := status != health.StatusUnhealthy
	statusCode := http.StatusOK
	readiness := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		readiness = "not_ready"
	}

	c.JSON(statusCode, gin.H{
		"status":    readiness,
		"timestamp": time.Now(),
		"checks":    checks,
	})
}

// Live is a trivial liveness probe for container orchestration.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

// Version reports build metadata.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// Metrics exposes Prometheus metrics
func Metrics() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
