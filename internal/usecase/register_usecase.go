package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
)

// RegisterUseCase handles entry registration: persist the entry and
// either consolidate it inline (fast path) or queue it for the worker
// (deferred path), depending on downstream availability.
type RegisterUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	aggRepo   AggregateRepository
	cache     Cache
	publisher Publisher
	probe     AvailabilityProbe
	retrier   Retrier
	logger    zerolog.Logger
}

// NewRegisterUseCase creates a new RegisterUseCase.
func NewRegisterUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	aggRepo AggregateRepository,
	cache Cache,
	publisher Publisher,
	probe AvailabilityProbe,
	retrier Retrier,
	logger zerolog.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		aggRepo:   aggRepo,
		cache:     cache,
		publisher: publisher,
		probe:     probe,
		retrier:   retrier,
		logger:    logger,
	}
}

// RegisterInput represents a well-formed entry to register. Validation
// happens at the transport boundary, before the core.
type RegisterInput struct {
	Kind        domain.EntryKind
	Amount      decimal.Decimal
	Description string
	EntryDate   time.Time
}

// Register persists the entry and returns it with its store-assigned
// ID. The caller cannot tell from the return value whether the entry
// was consolidated inline or queued; Status carries that.
//
// Any store, cache, or publish failure aborts the whole registration
// and surfaces to the caller. A failing probe is not an error; it is
// the deferred branch.
func (uc *RegisterUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Entry, error) {
	entry := domain.NewEntry(input.Kind, input.Amount, input.Description, input.EntryDate)
	date := entry.AggregateDate

	err := uc.retrier.Retry(ctx, func() error {
		return uc.register(ctx, entry, date)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Int64("entry_id", entry.ID).
		Str("kind", string(entry.Kind)).
		Str("status", string(entry.Status)).
		Str("date", date.Format(time.DateOnly)).
		Msg("entry registered")

	return entry, nil
}

func (uc *RegisterUseCase) register(ctx context.Context, entry *domain.Entry, date time.Time) error {
	// Retries re-enter with a fresh transaction; reset any state a
	// failed attempt may have left behind.
	entry.ID = 0
	entry.Status = domain.EntryStatusPending

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.aggRepo.EnsureExists(ctx, tx, date); err != nil {
		return err
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	// A new entry invalidates the day's entry list no matter which
	// branch is taken below.
	if err := uc.cache.Delete(ctx, EntriesCacheKey(date)); err != nil {
		return err
	}

	if !uc.probe.Available(ctx) {
		// Deferred path: commit as pending, hand off to the queue.
		// The aggregate is untouched, so its cache key stays put.
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		uc.logger.Warn().
			Str("date", date.Format(time.DateOnly)).
			Msg("consolidation service unavailable, queueing entry")

		return uc.publisher.PublishEntry(ctx, entry)
	}

	credits, debits := deltaFor(entry)
	if err := uc.aggRepo.AddToTotals(ctx, tx, date, credits, debits); err != nil {
		return err
	}

	if err := entry.Consolidate(); err != nil {
		return err
	}

	if err := uc.entryRepo.SetStatus(ctx, tx, entry.ID, domain.EntryStatusConsolidated); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	return uc.cache.Delete(ctx, AggregateCacheKey(date))
}

// deltaFor maps an entry to the (credits, debits) increments it
// contributes to its day's aggregate.
func deltaFor(entry *domain.Entry) (decimal.Decimal, decimal.Decimal) {
	if entry.Kind == domain.EntryKindCredit {
		return entry.Amount, decimal.Zero
	}

	return decimal.Zero, entry.Amount
}
