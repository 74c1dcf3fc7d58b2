package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/fundfactor/internal/external/famafrench"
	"github.com/wonny/fundfactor/pkg/logger"
)

// DatasetLister lists the factor library catalogue; *famafrench.Client satisfies it
type DatasetLister interface {
	ListDatasets(ctx context.Context) ([]famafrench.Dataset, error)
}

// DatasetsHandler serves the factor library catalogue
type DatasetsHandler struct {
	lister DatasetLister
	logger *logger.Logger
}

// NewDatasetsHandler creates a new datasets handler
func NewDatasetsHandler(lister DatasetLister, log *logger.Logger) *DatasetsHandler {
	return &DatasetsHandler{lister: lister, logger: log}
}

// List returns every dataset published as zipped CSV
// GET /api/datasets
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.lister.ListDatasets(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list datasets")
		respondError(w, StatusFor(err), "Failed to retrieve dataset catalogue")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(datasets),
		"datasets": datasets,
	})
}
