package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/api/middleware"
	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/services/metrics"
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
	"github.com/wisdomindex/wealth_service/pkg/logger"
)

type stubFactRepo struct {
	facts *entities.Facts
	err   error
}

func (s *stubFactRepo) GetFacts(ctx context.Context, clientID int64) (*entities.Facts, error) {
	return s.facts, s.err
}

func (s *stubFactRepo) GetProfile(ctx context.Context, clientID int64) (*entities.ClientProfile, error) {
	if s.facts == nil {
		return nil, s.err
	}
	return s.facts.Profile, nil
}

func (s *stubFactRepo) ListClientIDs(ctx context.Context) ([]int64, error) {
	return []int64{7}, nil
}

type stubTargetRepo struct {
	latest map[string]*entities.MetricTarget
}

func (s *stubTargetRepo) GetLatest(ctx context.Context, clientID int64, metricName string) (*entities.MetricTarget, error) {
	return s.latest[metricName], nil
}

func (s *stubTargetRepo) GetAllLatest(ctx context.Context, clientID int64) (map[string]*entities.MetricTarget, error) {
	return s.latest, nil
}

func (s *stubTargetRepo) Insert(ctx context.Context, target *entities.MetricTarget) error {
	if s.latest == nil {
		s.latest = make(map[string]*entities.MetricTarget)
	}
	s.latest[target.MetricName] = target
	return nil
}

func (s *stubTargetRepo) DeleteLatest(ctx context.Context, clientID int64, metricName string) (bool, error) {
	if _, ok := s.latest[metricName]; !ok {
		return false, nil
	}
	delete(s.latest, metricName)
	return true, nil
}

func (s *stubTargetRepo) DeleteAll(ctx context.Context, clientID int64) (int64, error) {
	n := int64(len(s.latest))
	s.latest = nil
	return n, nil
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func salaryFacts() *entities.Facts {
	return &entities.Facts{
		Profile: &entities.ClientProfile{ClientID: 7},
		Incomes: []entities.IncomeStream{
			{Name: "Salary", IncomeType: entities.IncomeSalary, CurrentYearAmount: decimal.NewFromInt(120000)},
			{Name: "Old Job", IncomeType: entities.IncomeSalary, CurrentYearAmount: decimal.NewFromInt(90000), Deleted: true},
		},
	}
}

// newMetricRouter wires the handler behind the auth context a real request
// would carry, with the given target rows preloaded.
func newMetricRouter(facts *entities.Facts, targetRows map[string]*entities.MetricTarget) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := metrics.NewEngine(&stubFactRepo{facts: facts}, zap.NewNop())
	targetSvc := targets.NewService(&stubTargetRepo{latest: targetRows}, zap.NewNop())
	handler := NewMetricHandler(engine, targetSvc, testLogger())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.CtxClientID, int64(7))
	})
	router.GET("/metrics/all", handler.GetAllMetrics)
	router.GET("/metrics/catalog", handler.GetCatalog)
	router.GET("/metrics/:name", handler.GetMetric)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetMetricWithoutTarget(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/total_income")
	require.Equal(t, http.StatusOK, w.Code)

	var body entities.ComputedMetric
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "total_income", body.Metric)
	require.NotNil(t, body.Value)
	assert.Equal(t, 120000.0, *body.Value)
	assert.Equal(t, entities.CategoryIncome, body.Category)
	assert.Equal(t, int64(7), body.ClientID)
	assert.Nil(t, body.Target)
	assert.Equal(t, entities.StatusNoTarget, body.Status)
}

func TestGetMetricAnnotatesTargetStatus(t *testing.T) {
	router := newMetricRouter(salaryFacts(), map[string]*entities.MetricTarget{
		"total_income": {MetricName: "total_income", TargetValue: decimal.NewFromInt(100000)},
	})

	w := doRequest(router, http.MethodGet, "/metrics/total_income")
	require.Equal(t, http.StatusOK, w.Code)

	var body entities.ComputedMetric
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Target)
	assert.Equal(t, 100000.0, *body.Target)
	assert.Equal(t, entities.StatusMet, body.Status)
}

func TestGetMetricUnknownName(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/net_wroth")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_METRIC", body.Code)
}

func TestGetMetricRejectsMalformedAsOf(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/total_income?as_of=yesterday")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_REQUEST", body.Code)
}

func TestGetMetricAcceptsAsOfDate(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/total_income?as_of=2024-06-30")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAllMetricsGroupsByCategory(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/all")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ClientID int64                      `json:"user_id"`
		AsOf     string                     `json:"as_of"`
		Metrics  entities.MetricsByCategory `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ClientID)
	assert.NotEmpty(t, body.AsOf)
	assert.Len(t, body.Metrics, 6)

	total := 0
	for _, group := range body.Metrics {
		total += len(group)
	}
	assert.Equal(t, len(metrics.MetricNames()), total)
}

func TestGetCatalogListsEveryMetric(t *testing.T) {
	router := newMetricRouter(salaryFacts(), nil)

	w := doRequest(router, http.MethodGet, "/metrics/catalog")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Metrics []struct {
			Metric   string `json:"metric"`
			Category string `json:"category"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Metrics, len(metrics.MetricNames()))
}
