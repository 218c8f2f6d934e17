package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

// keyMetrics is the subset surfaced on the advisor overview, in display order.
var keyMetrics = []string{
	"net_worth",
	"total_income",
	"total_expenses",
	"margin",
	"retirement_ratio",
}

// AdminHandler serves advisor endpoints that operate on arbitrary households.
type AdminHandler struct {
	engine  *metrics.Engine
	targets *targets.Service
	facts   repositories.FactRepository
	logger  *logger.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(engine *metrics.Engine, targetSvc *targets.Service, facts repositories.FactRepository, log *logger.Logger) *AdminHandler {
	return &AdminHandler{engine: engine, targets: targetSvc, facts: facts, logger: log}
}

func pathClientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("client_id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid client_id", nil)
		return 0, false
	}
	return id, true
}

// ListClients returns every known household with its profile name.
func (h *AdminHandler) ListClients(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.facts.ListClientIDs(ctx)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_ids": ids})
}

// GetClientMetrics computes the full catalog for one household.
func (h *AdminHandler) GetClientMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	cid, ok := pathClientID(c)
	if !ok {
		return
	}

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

// GetKeyMetrics computes the advisor-overview subset for every household.
// One failing household is reported inline rather than failing the batch.
func (h *AdminHandler) GetKeyMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	asOf, ok := asOfDate(c)
	if !ok {
		respondBadRequest(c, "Invalid as_of date, expected YYYY-MM-DD", nil)
		return
	}

	ids, err := h.facts.ListClientIDs(ctx)
	if err != nil {
		respondAppError(c, err)
		return
	}

	type clientSummary struct {
		ClientID int64               `json:"client_id"`
		Metrics  map[string]*float64 `json:"metrics,omitempty"`
		Error    string              `json:"error,omitempty"`
	}

	summaries := make([]clientSummary, 0, len(ids))
	for _, cid := range ids {
		all, err := h.engine.ComputeAllMetrics(ctx, cid, asOf)
		if err != nil {
			h.logger.CtxWarn(ctx, "key metrics failed for client", "error", err, "client_id", cid)
			summaries = append(summaries, clientSummary{ClientID: cid, Error: "computation failed"})
			continue
		}

		subset := make(map[string]*float64, len(keyMetrics))
		for _, name := range keyMetrics {
			subset[name] = all[name].Float()
		}
		summaries = append(summaries, clientSummary{ClientID: cid, Metrics: subset})
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":   asOf.Format(time.RFC3339),
		"clients": summaries,
	})
}

// GetClientTargets returns the current targets for one household.
func (h *AdminHandler) GetClientTargets(c *gin.Context) {
	cid, ok := pathClientID(c)
	if !ok {
		return
	}

	all, err := h.targets.GetAll(c.Request.Context(), cid)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_id": cid, "targets": all})
}

// SetClientTarget records a target value for one household metric.
func (h *AdminHandler) SetClientTarget(c *gin.Context) {
	cid, ok := pathClientID(c)
	if !ok {
		return
	}

	var req struct {
		TargetValue decimal.Decimal `json:"target_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid target payload", map[string]interface{}{"error": err.Error()})
		return
	}

	target, err := h.targets.Set(c.Request.Context(), cid, entities.TargetUpdate{
		MetricName:  c.Param("metric"),
		TargetValue: req.TargetValue,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": target})
}

// DeleteClientTarget removes the most recent target row for one household
// metric.
func (h *AdminHandler) DeleteClientTarget(c *gin.Context) {
	cid, ok := pathClientID(c)
	if !ok {
		return
	}

	if err := h.targets.Delete(c.Request.Context(), cid, c.Param("metric")); err != nil {
		respondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
