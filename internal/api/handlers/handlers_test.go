package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/external/famafrench"
	"github.com/wonny/fundfactor/internal/external/yahoo"
	"github.com/wonny/fundfactor/internal/fund"
	"github.com/wonny/fundfactor/internal/growth"
	"github.com/wonny/fundfactor/pkg/config"
	"github.com/wonny/fundfactor/pkg/httputil"
	"github.com/wonny/fundfactor/pkg/logger"
)

type fakeAnalyzer struct {
	got fund.Spec
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, spec fund.Spec) (*fund.Analysis, error) {
	f.got = spec
	if f.err != nil {
		return nil, f.err
	}
	return &fund.Analysis{
		Name:     "Vanguard Total Stock Market",
		Source:   spec.Ticker,
		Currency: contracts.CurrencyUSD,
		Region:   contracts.RegionUnitedStates,
		Window:   spec.Window,
		CAGR: growth.Summary{
			First:   contracts.NewPeriod(2014, time.January),
			Last:    contracts.NewPeriod(2024, time.January),
			Years:   10,
			Rate:    0.1,
			Percent: decimal.RequireFromString("10"),
		},
	}, nil
}

func serveAnalysis(t *testing.T, h *FundHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/funds/{ticker}/analysis", h.GetAnalysis)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetAnalysis_OK(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := NewFundHandler(analyzer, logger.Nop())

	rec := serveAnalysis(t, h, "/api/funds/VTI/analysis?currency=usd&region=united%20states&window=24")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "VTI", analyzer.got.Ticker)
	assert.Equal(t, "usd", analyzer.got.Currency)
	assert.Equal(t, 24, analyzer.got.Window)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Vanguard Total Stock Market", body["name"])
	assert.Equal(t, "CAGR from 2014-01 to 2024-01: 10.00 %.", body["summary"])
	assert.EqualValues(t, 24, body["window"])
}

func TestGetAnalysis_DefaultWindow(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := NewFundHandler(analyzer, logger.Nop())

	rec := serveAnalysis(t, h, "/api/funds/VTI/analysis?currency=USD&region=Europe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contracts.DefaultWindow, analyzer.got.Window)
}

func TestGetAnalysis_BadRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad window", "currency=USD&region=Europe&window=abc"},
		{"zero window", "currency=USD&region=Europe&window=0"},
		{"unknown currency", "currency=GBP&region=Europe"},
		{"unknown region", "currency=USD&region=Asia"},
		{"missing currency", "region=Europe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			h := NewFundHandler(analyzer, logger.Nop())

			rec := serveAnalysis(t, h, "/api/funds/VTI/analysis?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, analyzer.got.Ticker, "analyzer must not run")
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGetAnalysis_PipelineErrors(t *testing.T) {
	analyzer := &fakeAnalyzer{err: fmt.Errorf("VTI: %w: window too big", contracts.ErrInsufficientData)}
	h := NewFundHandler(analyzer, logger.Nop())

	rec := serveAnalysis(t, h, "/api/funds/VTI/analysis?currency=USD&region=Europe")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetAnalysis_ProviderTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	defer slow.Close()

	cfg := &config.Config{HTTP: config.HTTPConfig{Timeout: 5 * time.Second}}
	market := yahoo.NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), slow.URL)
	h := NewFundHandler(fund.NewService(fund.Deps{Market: market, Logger: logger.Nop()}), logger.Nop())

	r := mux.NewRouter()
	r.HandleFunc("/api/funds/{ticker}/analysis", h.GetAnalysis)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/funds/VTI/analysis?currency=USD&region=Europe", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestStatusFor(t *testing.T) {
	unknownTicker := fmt.Errorf("%w: ticker %q: %w", contracts.ErrInvalidConfiguration, "NOPE", contracts.ErrDataUnavailable)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown ticker", unknownTicker, http.StatusNotFound},
		{"config", &contracts.ConfigError{Field: "region", Value: "Mars"}, http.StatusBadRequest},
		{"insufficient", fmt.Errorf("x: %w", contracts.ErrInsufficientData), http.StatusUnprocessableEntity},
		{"unavailable", fmt.Errorf("x: %w", contracts.ErrDataUnavailable), http.StatusBadGateway},
		{"format", fmt.Errorf("x: %w", contracts.ErrFormat), http.StatusBadGateway},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"deadline inside unknown ticker", fmt.Errorf("%w: ticker %q: %w", contracts.ErrInvalidConfiguration, "VTI", fmt.Errorf("%w: %w", contracts.ErrDataUnavailable, context.DeadlineExceeded)), http.StatusGatewayTimeout},
		{"deadline inside unavailable", fmt.Errorf("%w: VTI: HTTP request failed: %w", contracts.ErrDataUnavailable, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRegionsHandler(t *testing.T) {
	datasets := func(region contracts.Region) (string, string, error) {
		return string(region) + "_5", string(region) + "_mom", nil
	}

	rec := httptest.NewRecorder()
	RegionsHandler(datasets)(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []RegionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, len(contracts.Regions))
	assert.Equal(t, contracts.RegionUnitedStates, out[0].Name)
	assert.Equal(t, "Europe_mom", out[2].MomentumDataset)
}

type fakeLister struct {
	datasets []famafrench.Dataset
	err      error
}

func (f fakeLister) ListDatasets(context.Context) ([]famafrench.Dataset, error) {
	return f.datasets, f.err
}

func TestDatasetsHandler_List(t *testing.T) {
	h := NewDatasetsHandler(fakeLister{datasets: []famafrench.Dataset{
		{Name: "F-F_Research_Data_5_Factors_2x3", URL: "https://example.test/a_CSV.zip"},
	}}, logger.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count    int                  `json:"count"`
		Datasets []famafrench.Dataset `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "F-F_Research_Data_5_Factors_2x3", body.Datasets[0].Name)
}

func TestDatasetsHandler_Upstream(t *testing.T) {
	h := NewDatasetsHandler(fakeLister{err: fmt.Errorf("%w: status 503", contracts.ErrDataUnavailable)}, logger.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
