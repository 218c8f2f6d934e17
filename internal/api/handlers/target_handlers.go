package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

// TargetHandler serves target CRUD for the authenticated household.
type TargetHandler struct {
	targets *targets.Service
	logger  *logger.Logger
}

// NewTargetHandler creates the target handler.
func NewTargetHandler(targetSvc *targets.Service, log *logger.Logger) *TargetHandler {
	return &TargetHandler{targets: targetSvc, logger: log}
}

// GetTargets returns the current target for every metric that has one.
func (h *TargetHandler) GetTargets(c *gin.Context) {
	all, err := h.targets.GetAll(c.Request.Context(), clientID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": all})
}

// GetTarget returns the current target for one metric, null when unset.
func (h *TargetHandler) GetTarget(c *gin.Context) {
	target, err := h.targets.Get(c.Request.Context(), clientID(c), c.Param("metric"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": target})
}

// SetTarget records a new target value for one metric.
func (h *TargetHandler) SetTarget(c *gin.Context) {
	var req struct {
		TargetValue decimal.Decimal `json:"target_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid target payload", map[string]interface{}{"error": err.Error()})
		return
	}

	target, err := h.targets.Set(c.Request.Context(), clientID(c), entities.TargetUpdate{
		MetricName:  c.Param("metric"),
		TargetValue: req.TargetValue,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": target})
}

// SetTargets records many target values in one call, skipping metrics whose
// current target already equals the submitted value.
func (h *TargetHandler) SetTargets(c *gin.Context) {
	var req struct {
		Targets []entities.TargetUpdate `json:"targets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid targets payload", map[string]interface{}{"error": err.Error()})
		return
	}

	written, err := h.targets.SetMany(c.Request.Context(), clientID(c), req.Targets)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submitted": len(req.Targets),
		"written":   written,
	})
}

// DeleteTarget removes the most recent target row for one metric, reverting
// to the previous value when history exists.
func (h *TargetHandler) DeleteTarget(c *gin.Context) {
	if err := h.targets.Delete(c.Request.Context(), clientID(c), c.Param("metric")); err != nil {
		respondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTargets removes every target row for the household.
func (h *TargetHandler) DeleteTargets(c *gin.Context) {
	deleted, err := h.targets.DeleteAll(c.Request.Context(), clientID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
