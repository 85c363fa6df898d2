package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
	"github.com/iho/cashflow/internal/usecase"
)

// AggregateRepository implements usecase.AggregateRepository.
type AggregateRepository struct {
	pool queryer
}

// NewAggregateRepository creates a new AggregateRepository.
func NewAggregateRepository(pool *pgxpool.Pool) *AggregateRepository {
	return newAggregateRepositoryWithPool(pool)
}

func newAggregateRepositoryWithPool(pool queryer) *AggregateRepository {
	return &AggregateRepository{pool: pool}
}

// EnsureExists creates the aggregate row for date with zero totals if
// it is absent. ON CONFLICT DO NOTHING makes concurrent first entries
// of the same day race-free.
func (r *AggregateRepository) EnsureExists(ctx context.Context, tx usecase.Transaction, date time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO daily_aggregates (date, total_credits, total_debits, updated_at)
		 VALUES ($1, 0, 0, $2)
		 ON CONFLICT (date) DO NOTHING`,
		dateToPgDate(date),
		timeToPgTimestamptz(time.Now().UTC()),
	)

	return err
}

// GetByDate retrieves the aggregate for a calendar date.
func (r *AggregateRepository) GetByDate(ctx context.Context, date time.Time) (*domain.DailyAggregate, error) {
	var (
		agg       domain.DailyAggregate
		pgDate    pgtype.Date
		credits   pgtype.Numeric
		debits    pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx,
		`SELECT date, total_credits, total_debits, updated_at
		 FROM daily_aggregates WHERE date = $1`,
		dateToPgDate(date),
	).Scan(&pgDate, &credits, &debits, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAggregateNotFound
		}

		return nil, err
	}

	agg.Date = pgDate.Time.UTC()
	agg.TotalCredits = numericToDecimal(credits)
	agg.TotalDebits = numericToDecimal(debits)
	agg.UpdatedAt = updatedAt.Time

	return &agg, nil
}

// AddToTotals applies the increments in the database itself, so
// concurrent consolidations of the same date serialize on the row lock
// instead of clobbering each other's read-modify-write.
func (r *AggregateRepository) AddToTotals(ctx context.Context, tx usecase.Transaction, date time.Time, credits, debits decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE daily_aggregates
		 SET total_credits = total_credits + $2,
		     total_debits  = total_debits + $3,
		     updated_at    = $4
		 WHERE date = $1`,
		dateToPgDate(date),
		decimalToNumeric(credits),
		decimalToNumeric(debits),
		timeToPgTimestamptz(time.Now().UTC()),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAggregateNotFound
	}

	return nil
}
