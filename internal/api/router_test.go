package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundfactor/internal/api/handlers"
	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/fund"
	"github.com/wonny/fundfactor/pkg/logger"
)

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, fund.Spec) (*fund.Analysis, error) {
	panic("analyzer exploded")
}

func newTestRouter() http.Handler {
	log := logger.Nop()
	return NewRouter(Handlers{
		Fund: handlers.NewFundHandler(panickingAnalyzer{}, log),
		Regions: handlers.RegionsHandler(func(r contracts.Region) (string, string, error) {
			return "five", "mom", nil
		}),
		Checks: map[string]func(context.Context) string{
			"redis": func(context.Context) string { return "disabled" },
		},
	}, log)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fundfactor-api", body["service"])
	assert.Equal(t, map[string]interface{}{"redis": "disabled"}, body["dependencies"])
}

func TestRequestID(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/funds/VTI/analysis?currency=USD&region=Europe", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestRoutes(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Datasets handler not mounted
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/regions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
