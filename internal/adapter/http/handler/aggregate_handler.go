package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashflow/internal/adapter/http/dto"
	"github.com/iho/cashflow/internal/usecase"
)

// AggregateHandler handles daily aggregate reads.
type AggregateHandler struct {
	queryUC *usecase.QueryUseCase
}

// NewAggregateHandler creates a new AggregateHandler.
func NewAggregateHandler(queryUC *usecase.QueryUseCase) *AggregateHandler {
	return &AggregateHandler{queryUC: queryUC}
}

// GetByDate returns the consolidated totals for a calendar date.
func (h *AggregateHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use yyyy-MM-dd)", err.Error())
		return
	}

	agg, err := h.queryUC.GetAggregate(r.Context(), date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get aggregate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AggregateFromDomain(agg))
}
