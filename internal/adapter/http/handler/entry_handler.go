package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashflow/internal/adapter/http/dto"
	"github.com/iho/cashflow/internal/usecase"
)

// EntryHandler handles entry registration and entry-list reads.
type EntryHandler struct {
	registerUC *usecase.RegisterUseCase
	queryUC    *usecase.QueryUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(registerUC *usecase.RegisterUseCase, queryUC *usecase.QueryUseCase) *EntryHandler {
	return &EntryHandler{
		registerUC: registerUC,
		queryUC:    queryUC,
	}
}

// Register registers a new entry. The response echoes the persisted
// entry; its status says whether consolidation happened inline or was
// deferred to the queue.
func (h *EntryHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}

	entry, err := h.registerUC.Register(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// ListByDate lists all entries for a calendar date.
func (h *EntryHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use yyyy-MM-dd)", err.Error())
		return
	}

	entries, err := h.queryUC.GetEntries(r.Context(), date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
