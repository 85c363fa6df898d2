package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashflow/internal/domain"
	"github.com/iho/cashflow/internal/usecase"
)

const entryColumns = `id, kind, amount, entry_date, description, status, aggregate_date, created_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool queryer
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepositoryWithPool(pool)
}

func newEntryRepositoryWithPool(pool queryer) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts the entry and fills in its store-assigned ID.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	return pgxTx.QueryRow(ctx,
		`INSERT INTO entries (kind, amount, entry_date, description, status, aggregate_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		string(entry.Kind),
		decimalToNumeric(entry.Amount),
		dateToPgDate(entry.EntryDate),
		entry.Description,
		string(entry.Status),
		dateToPgDate(entry.AggregateDate),
		timeToPgTimestamptz(entry.CreatedAt),
	).Scan(&entry.ID)
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)

	return scanEntry(row)
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Entry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1 FOR UPDATE`, id)

	return scanEntry(row)
}

// ListByDate retrieves all entries for a calendar date.
func (r *EntryRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE entry_date = $1 ORDER BY id`,
		dateToPgDate(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SetStatus updates an entry's status.
func (r *EntryRepository) SetStatus(ctx context.Context, tx usecase.Transaction, id int64, status domain.EntryStatus) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE entries SET status = $2 WHERE id = $1`, id, string(status))

	return err
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry     domain.Entry
		kind      string
		status    string
		amount    pgtype.Numeric
		entryDate pgtype.Date
		aggDate   pgtype.Date
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&entry.ID, &kind, &amount, &entryDate, &entry.Description, &status, &aggDate, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Kind = domain.EntryKind(kind)
	entry.Status = domain.EntryStatus(status)
	entry.Amount = numericToDecimal(amount)
	entry.EntryDate = entryDate.Time.UTC()
	entry.AggregateDate = aggDate.Time.UTC()
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
