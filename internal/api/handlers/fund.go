package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/fund"
	"github.com/wonny/fundfactor/pkg/logger"
)

// Analyzer runs the fund pipeline; *fund.Service satisfies it
type Analyzer interface {
	Analyze(ctx context.Context, spec fund.Spec) (*fund.Analysis, error)
}

// FundHandler serves fund analyses
// ⭐ SSOT: fund API handlers live in this struct
type FundHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewFundHandler creates a new fund handler
func NewFundHandler(analyzer Analyzer, log *logger.Logger) *FundHandler {
	return &FundHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// AnalysisResponse is the analysis plus its printable CAGR line
type AnalysisResponse struct {
	*fund.Analysis
	Summary string `json:"summary"`
}

// GetAnalysis runs the full analysis of one ticker
// GET /api/funds/{ticker}/analysis?currency=USD&region=Europe&window=36
func (h *FundHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]
	q := r.URL.Query()

	window, err := fund.ParseWindow(q.Get("window"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	spec := fund.Spec{
		Ticker:   ticker,
		Currency: q.Get("currency"),
		Region:   q.Get("region"),
		Window:   window,
	}
	if err := spec.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.analyzer.Analyze(ctx, spec)
	if err != nil {
		status := StatusFor(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": status,
		}).Error("Fund analysis failed")
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, AnalysisResponse{Analysis: analysis, Summary: analysis.CAGR.String()})
}

// RegionInfo describes one supported region
type RegionInfo struct {
	Name              contracts.Region `json:"name"`
	FiveFactorDataset string           `json:"five_factor_dataset"`
	MomentumDataset   string           `json:"momentum_dataset"`
}

// DatasetsFunc maps a region to its factor datasets
type DatasetsFunc func(region contracts.Region) (string, string, error)

// RegionsHandler lists the supported regions
// GET /api/regions
func RegionsHandler(datasets DatasetsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]RegionInfo, 0, len(contracts.Regions))
		for _, region := range contracts.Regions {
			five, mom, err := datasets(region)
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			out = append(out, RegionInfo{Name: region, FiveFactorDataset: five, MomentumDataset: mom})
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// StatusFor maps pipeline error kinds to HTTP status codes.
// A deadline wins over every kind it is wrapped in.
// An unresolvable ticker is a configuration error caused by missing data: 404.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, contracts.ErrInvalidConfiguration) && errors.Is(err, contracts.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrDataUnavailable), errors.Is(err, contracts.ErrFormat):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
