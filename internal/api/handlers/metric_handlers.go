package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

// MetricHandler serves computed metrics for the authenticated household.
type MetricHandler struct {
	engine  *metrics.Engine
	targets *targets.Service
	logger  *logger.Logger
}

// NewMetricHandler creates the metric handler.
func NewMetricHandler(engine *metrics.Engine, targetSvc *targets.Service, log *logger.Logger) *MetricHandler {
	return &MetricHandler{engine: engine, targets: targetSvc, logger: log}
}

// allMetricsResponse is the grouped payload for the dashboard.
type allMetricsResponse struct {
	ClientID int64                      `json:"user_id"`
	AsOf     string                     `json:"as_of"`
	Metrics  entities.MetricsByCategory `json:"metrics"`
}

// GetMetric computes one metric by name, annotated with the household's
// target for it when one is set. Accepts an as_of date override.
func (h *MetricHandler) GetMetric(c *gin.Context) {
	ctx := c.Request.Context()
	cid := clientID(c)
	name := c.Param("name")

	asOf, ok := asOfDate(c)
	if !ok {
		respondBadRequest(c, "Invalid as_of date, expected YYYY-MM-DD", nil)
		return
	}

	value, err := h.engine.ComputeMetric(ctx, cid, name, asOf)
	if err != nil {
		respondAppError(c, err)
		return
	}

	def, _ := metrics.Lookup(name)
	result := entities.ComputedMetric{
		Metric:   name,
		Value:    value.Float(),
		Category: def.Category,
		ClientID: cid,
	}

	target, err := h.targets.Get(ctx, cid, name)
	if err != nil {
		h.logger.CtxWarn(ctx, "target lookup failed, serving metric without comparison",
			"error", err, "metric", name, "client_id", cid)
	} else {
		targets.Annotate(&result, target, def.Polarity)
	}

	c.JSON(http.StatusOK, result)
}

// GetAllMetrics computes the full catalog grouped by category.
func (h *MetricHandler) GetAllMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	cid := clientID(c)

	asOf, ok := asOfDate(c)
	if !ok {
		respondBadRequest(c, "Invalid as_of date, expected YYYY-MM-DD", nil)
		return
	}

	grouped, err := h.engine.ComputeByCategory(ctx, cid, asOf)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, allMetricsResponse{
		ClientID: cid,
		AsOf:     asOf.Format(time.RFC3339),
		Metrics:  grouped,
	})
}

// GetCatalog lists every metric name with its category, in presentation
// order. Static; useful for building target-setting UIs.
func (h *MetricHandler) GetCatalog(c *gin.Context) {
	type catalogEntry struct {
		Metric   string                  `json:"metric"`
		Category entities.MetricCategory `json:"category"`
	}

	defs := metrics.Catalog()
	out := make([]catalogEntry, len(defs))
	for i, def := range defs {
		out[i] = catalogEntry{Metric: def.Name, Category: def.Category}
	}
	c.JSON(http.StatusOK, gin.H{"metrics": out})
}
