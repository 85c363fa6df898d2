package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashflow/internal/adapter/http/dto"
	"github.com/iho/cashflow/internal/adapter/http/handler"
	"github.com/iho/cashflow/internal/domain"
	"github.com/iho/cashflow/internal/usecase"
	"github.com/iho/cashflow/internal/usecase/mocks"
)

type aggregateFixture struct {
	entryRepo *mocks.MockEntryRepository
	aggRepo   *mocks.MockAggregateRepository
	cache     *mocks.MockCache
	router    chi.Router
}

func newAggregateFixture(t *testing.T) *aggregateFixture {
	ctrl := gomock.NewController(t)

	f := &aggregateFixture{
		entryRepo: mocks.NewMockEntryRepository(ctrl),
		aggRepo:   mocks.NewMockAggregateRepository(ctrl),
		cache:     mocks.NewMockCache(ctrl),
	}

	queryUC := usecase.NewQueryUseCase(f.entryRepo, f.aggRepo, f.cache, zerolog.Nop())
	h := handler.NewAggregateHandler(queryUC)

	f.router = chi.NewRouter()
	f.router.Get("/aggregates/{date}", h.GetByDate)

	return f
}

func TestGetByDate_ReturnsTotalsAndBalance(t *testing.T) {
	f := newAggregateFixture(t)

	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	agg := &domain.DailyAggregate{
		Date:         date,
		TotalCredits: decimal.RequireFromString("500.00"),
		TotalDebits:  decimal.RequireFromString("150.00"),
	}

	f.cache.EXPECT().Get(gomock.Any(), "aggregate:2025-06-15").Return(nil, errors.New("redis: nil"))
	f.aggRepo.EXPECT().GetByDate(gomock.Any(), date).Return(agg, nil)
	f.cache.EXPECT().Set(gomock.Any(), "aggregate:2025-06-15", gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/aggregates/2025-06-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-15", resp.Date)
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("350.00")))
}

func TestGetByDate_UnknownDateIs404(t *testing.T) {
	f := newAggregateFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "aggregate:2025-06-15").Return(nil, errors.New("redis: nil"))
	f.aggRepo.EXPECT().GetByDate(gomock.Any(), gomock.Any()).Return(nil, domain.ErrAggregateNotFound)

	req := httptest.NewRequest(http.MethodGet, "/aggregates/2025-06-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetByDate_InvalidDate(t *testing.T) {
	f := newAggregateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/aggregates/june-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByDate_StoreFailureIs500(t *testing.T) {
	f := newAggregateFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "aggregate:2025-06-15").Return(nil, errors.New("redis: nil"))
	f.aggRepo.EXPECT().GetByDate(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/aggregates/2025-06-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
