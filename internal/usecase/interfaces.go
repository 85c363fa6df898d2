package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// EntryRepository defines data access for entries.
type EntryRepository interface {
	// Create inserts the entry and fills in the store-assigned ID.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id int64) (*domain.Entry, error)
	// GetByIDForUpdate locks the entry row for the duration of tx.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Entry, error)
	ListByDate(ctx context.Context, date time.Time) ([]*domain.Entry, error)
	SetStatus(ctx context.Context, tx Transaction, id int64, status domain.EntryStatus) error
}

// AggregateRepository defines data access for daily aggregates.
type AggregateRepository interface {
	// EnsureExists creates the aggregate row for date with zero totals
	// if it is absent. Safe to call concurrently.
	EnsureExists(ctx context.Context, tx Transaction, date time.Time) error
	GetByDate(ctx context.Context, date time.Time) (*domain.DailyAggregate, error)
	// AddToTotals applies an atomic in-database increment to the
	// matching totals, serialized by row-level locking.
	AddToTotals(ctx context.Context, tx Transaction, date time.Time, credits, debits decimal.Decimal) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines key-value caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Publisher hands a pending entry to the durable queue for deferred
// consolidation.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *domain.Entry) error
}

// AvailabilityProbe reports whether the downstream consolidation
// service is reachable right now. It never errors: absence of a
// positive signal means unavailable.
type AvailabilityProbe interface {
	Available(ctx context.Context) bool
}
