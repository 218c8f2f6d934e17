package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisdomindex/wealth_service/internal/domain/services/insights"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

// InsightHandler serves stored AI narratives and on-demand regeneration.
type InsightHandler struct {
	insights *insights.Service
	logger   *logger.Logger
}

// NewInsightHandler creates the insight handler.
func NewInsightHandler(svc *insights.Service, log *logger.Logger) *InsightHandler {
	return &InsightHandler{insights: svc, logger: log}
}

// GetLatest returns the most recently generated insight, 404 when none has
// been generated yet.
func (h *InsightHandler) GetLatest(c *gin.Context) {
	insight, err := h.insights.GetLatest(c.Request.Context(), clientID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	if insight == nil {
		respondError(c, http.StatusNotFound, "INSIGHT_NOT_FOUND", "No insight generated yet", nil)
		return
	}
	c.JSON(http.StatusOK, insight)
}

// Generate regenerates the insight from current metrics and returns it.
func (h *InsightHandler) Generate(c *gin.Context) {
	insight, err := h.insights.Generate(c.Request.Context(), clientID(c),
		time.Now().UTC(), insights.TriggerOnDemand)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, insight)
}
