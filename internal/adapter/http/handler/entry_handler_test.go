package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
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

type onceRetrier struct{}

func (onceRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

type handlerFixture struct {
	txManager *mocks.MockTransactionManager
	tx        *mocks.MockTransaction
	entryRepo *mocks.MockEntryRepository
	aggRepo   *mocks.MockAggregateRepository
	cache     *mocks.MockCache
	publisher *mocks.MockPublisher
	probe     *mocks.MockAvailabilityProbe
	router    chi.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
		entryRepo: mocks.NewMockEntryRepository(ctrl),
		aggRepo:   mocks.NewMockAggregateRepository(ctrl),
		cache:     mocks.NewMockCache(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		probe:     mocks.NewMockAvailabilityProbe(ctrl),
	}

	registerUC := usecase.NewRegisterUseCase(
		f.txManager, f.entryRepo, f.aggRepo, f.cache,
		f.publisher, f.probe, onceRetrier{}, zerolog.Nop(),
	)
	queryUC := usecase.NewQueryUseCase(f.entryRepo, f.aggRepo, f.cache, zerolog.Nop())

	h := handler.NewEntryHandler(registerUC, queryUC)

	f.router = chi.NewRouter()
	f.router.Post("/entries", h.Register)
	f.router.Get("/entries/{date}", h.ListByDate)

	return f
}

func TestRegister_InvalidBody(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_InvalidKind(t *testing.T) {
	f := newHandlerFixture(t)

	body := `{"kind":"transfer","amount":"10.00","entry_date":"2025-06-15T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid entry", resp.Error)
}

func TestRegister_DeferredPathReturnsPending(t *testing.T) {
	f := newHandlerFixture(t)

	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	f.aggRepo.EXPECT().EnsureExists(gomock.Any(), f.tx, gomock.Any()).Return(nil)
	f.entryRepo.EXPECT().Create(gomock.Any(), f.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, e *domain.Entry) error {
			e.ID = 11
			return nil
		})
	f.cache.EXPECT().Delete(gomock.Any(), "entries:2025-06-15").Return(nil)
	f.probe.EXPECT().Available(gomock.Any()).Return(false)
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	f.publisher.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Return(nil)

	body := `{"kind":"credit","amount":"500.00","description":"invoice","entry_date":"2025-06-15T10:30:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2025-06-15", resp.EntryDate)
}

func TestListByDate_InvalidDate(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/entries/15-06-2025", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByDate_EmptyDayIs404(t *testing.T) {
	f := newHandlerFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "entries:2025-06-15").Return(nil, errors.New("redis: nil"))
	f.entryRepo.EXPECT().ListByDate(gomock.Any(), gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/entries/2025-06-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListByDate_ReturnsEntries(t *testing.T) {
	f := newHandlerFixture(t)

	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	entries := []*domain.Entry{
		{ID: 1, Kind: domain.EntryKindCredit, Amount: decimal.RequireFromString("500.00"), EntryDate: date, Status: domain.EntryStatusConsolidated},
		{ID: 2, Kind: domain.EntryKindDebit, Amount: decimal.RequireFromString("150.00"), EntryDate: date, Status: domain.EntryStatusPending},
	}

	f.cache.EXPECT().Get(gomock.Any(), "entries:2025-06-15").Return(nil, errors.New("redis: nil"))
	f.entryRepo.EXPECT().ListByDate(gomock.Any(), date).Return(entries, nil)
	f.cache.EXPECT().Set(gomock.Any(), "entries:2025-06-15", gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/entries/2025-06-15", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "credit", resp[0].Kind)
	assert.Equal(t, "pending", resp[1].Status)
}
