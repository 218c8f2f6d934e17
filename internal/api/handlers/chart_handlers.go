package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

// ChartHandler serves category-breakdown chart data.
type ChartHandler struct {
	engine *metrics.Engine
	logger *logger.Logger
}

// NewChartHandler creates the chart handler.
func NewChartHandler(engine *metrics.Engine, log *logger.Logger) *ChartHandler {
	return &ChartHandler{engine: engine, logger: log}
}

type chartFunc func(ctx context.Context, clientID int64, asOf time.Time) ([]entities.ChartSlice, error)

func (h *ChartHandler) serve(c *gin.Context, chart string, fn chartFunc) {
	ctx := c.Request.Context()
	cid := clientID(c)

	asOf, ok := asOfDate(c)
	if !ok {
		respondBadRequest(c, "Invalid as_of date, expected YYYY-MM-DD", nil)
		return
	}

	slices, err := fn(ctx, cid, asOf)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chart":  chart,
		"as_of":  asOf.Format("2006-01-02"),
		"slices": slices,
	})
}

// IncomeChart breaks current-year income down by source.
func (h *ChartHandler) IncomeChart(c *gin.Context) {
	h.serve(c, "income", h.engine.IncomeChart)
}

// ExpenseChart breaks current-year expenses down by category.
func (h *ChartHandler) ExpenseChart(c *gin.Context) {
	h.serve(c, "expenses", h.engine.ExpenseChart)
}

// AllocationChart breaks investable assets down by class.
func (h *ChartHandler) AllocationChart(c *gin.Context) {
	h.serve(c, "allocation", h.engine.AllocationChart)
}
