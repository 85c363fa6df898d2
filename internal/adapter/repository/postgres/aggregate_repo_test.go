package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
)

func TestAggregateRepositoryEnsureExists(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO daily_aggregates").
		WithArgs(dateToPgDate(repoTestDate), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx := beginTestTx(t, mockPool)
	repo := newAggregateRepositoryWithPool(mockPool)

	if err := repo.EnsureExists(context.Background(), tx, repoTestDate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAggregateRepositoryEnsureExistsAlreadyPresent(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	// ON CONFLICT DO NOTHING: zero rows affected is still success.
	mockPool.ExpectExec("INSERT INTO daily_aggregates").
		WithArgs(dateToPgDate(repoTestDate), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	tx := beginTestTx(t, mockPool)
	repo := newAggregateRepositoryWithPool(mockPool)

	if err := repo.EnsureExists(context.Background(), tx, repoTestDate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAggregateRepositoryGetByDate(t *testing.T) {
	mockPool := newMockPool(t)

	rows := pgxmock.NewRows([]string{"date", "total_credits", "total_debits", "updated_at"}).
		AddRow(
			dateToPgDate(repoTestDate),
			decimalToNumeric(decimal.RequireFromString("500.00")),
			decimalToNumeric(decimal.RequireFromString("150.00")),
			timeToPgTimestamptz(time.Now().UTC()),
		)

	mockPool.ExpectQuery("SELECT .+ FROM daily_aggregates WHERE date").
		WithArgs(dateToPgDate(repoTestDate)).
		WillReturnRows(rows)

	repo := newAggregateRepositoryWithPool(mockPool)

	agg, err := repo.GetByDate(context.Background(), repoTestDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !agg.TotalCredits.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("expected credits 500.00, got %s", agg.TotalCredits)
	}
	if !agg.Balance().Equal(decimal.RequireFromString("350.00")) {
		t.Fatalf("expected balance 350.00, got %s", agg.Balance())
	}

	assertExpectations(t, mockPool)
}

func TestAggregateRepositoryGetByDateNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT .+ FROM daily_aggregates WHERE date").
		WithArgs(dateToPgDate(repoTestDate)).
		WillReturnError(pgx.ErrNoRows)

	repo := newAggregateRepositoryWithPool(mockPool)

	_, err := repo.GetByDate(context.Background(), repoTestDate)
	if !errors.Is(err, domain.ErrAggregateNotFound) {
		t.Fatalf("expected ErrAggregateNotFound, got %v", err)
	}
}

func TestAggregateRepositoryAddToTotals(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE daily_aggregates").
		WithArgs(
			dateToPgDate(repoTestDate),
			decimalToNumeric(decimal.RequireFromString("500.00")),
			decimalToNumeric(decimal.Zero),
			pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx := beginTestTx(t, mockPool)
	repo := newAggregateRepositoryWithPool(mockPool)

	err := repo.AddToTotals(context.Background(), tx, repoTestDate,
		decimal.RequireFromString("500.00"), decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAggregateRepositoryAddToTotalsMissingRow(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE daily_aggregates").
		WithArgs(dateToPgDate(repoTestDate), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx := beginTestTx(t, mockPool)
	repo := newAggregateRepositoryWithPool(mockPool)

	err := repo.AddToTotals(context.Background(), tx, repoTestDate, decimal.Zero, decimal.Zero)
	if !errors.Is(err, domain.ErrAggregateNotFound) {
		t.Fatalf("expected ErrAggregateNotFound, got %v", err)
	}
}
