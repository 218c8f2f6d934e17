package handlers

import (
	"bytes"
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
	"github.com/wisdomindex/wealth_service/internal/domain/services/targets"
)

func newTargetRouter(repo *stubTargetRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewTargetHandler(targets.NewService(repo, zap.NewNop()), testLogger())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.CtxClientID, int64(7))
	})
	router.GET("/targets", handler.GetTargets)
	router.PUT("/targets", handler.SetTargets)
	router.DELETE("/targets", handler.DeleteTargets)
	router.GET("/targets/:metric", handler.GetTarget)
	router.PUT("/targets/:metric", handler.SetTarget)
	router.DELETE("/targets/:metric", handler.DeleteTarget)
	return router
}

func doJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSetTargetUsesPathMetricName(t *testing.T) {
	repo := &stubTargetRepo{}
	router := newTargetRouter(repo)

	w := doJSON(router, http.MethodPut, "/targets/net_worth", gin.H{
		"metric_name":  "ignored",
		"target_value": 1000000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored := repo.latest["net_worth"]
	require.NotNil(t, stored)
	assert.True(t, stored.TargetValue.Equal(decimal.NewFromInt(1000000)))
	assert.Equal(t, int64(7), stored.ClientID)
}

func TestSetTargetUnknownMetric(t *testing.T) {
	router := newTargetRouter(&stubTargetRepo{})

	w := doJSON(router, http.MethodPut, "/targets/bogus", gin.H{"target_value": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_METRIC", body.Code)
}

func TestSetTargetsReportsWrittenCount(t *testing.T) {
	repo := &stubTargetRepo{latest: map[string]*entities.MetricTarget{
		"net_worth": {MetricName: "net_worth", TargetValue: decimal.NewFromInt(1000000)},
	}}
	router := newTargetRouter(repo)

	w := doJSON(router, http.MethodPut, "/targets", gin.H{
		"targets": []gin.H{
			{"metric_name": "net_worth", "target_value": 1000000}, // unchanged
			{"metric_name": "margin", "target_value": 50000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Submitted int `json:"submitted"`
		Written   int `json:"written"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Submitted)
	assert.Equal(t, 1, body.Written)
}

func TestGetTargetNullWhenUnset(t *testing.T) {
	router := newTargetRouter(&stubTargetRepo{})

	w := doJSON(router, http.MethodGet, "/targets/net_worth", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Target *entities.MetricTarget `json:"target"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Target)
}

func TestDeleteTargetNotFound(t *testing.T) {
	router := newTargetRouter(&stubTargetRepo{})

	w := doJSON(router, http.MethodDelete, "/targets/net_worth", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TARGET_NOT_FOUND", body.Code)
}

func TestDeleteTargetSucceeds(t *testing.T) {
	repo := &stubTargetRepo{latest: map[string]*entities.MetricTarget{
		"margin": {MetricName: "margin", TargetValue: decimal.NewFromInt(50000)},
	}}
	router := newTargetRouter(repo)

	w := doJSON(router, http.MethodDelete, "/targets/margin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.latest)
}

func TestDeleteTargetsReportsCount(t *testing.T) {
	repo := &stubTargetRepo{latest: map[string]*entities.MetricTarget{
		"margin":    {MetricName: "margin", TargetValue: decimal.NewFromInt(50000)},
		"net_worth": {MetricName: "net_worth", TargetValue: decimal.NewFromInt(1000000)},
	}}
	router := newTargetRouter(repo)

	w := doJSON(router, http.MethodDelete, "/targets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Deleted)
}
