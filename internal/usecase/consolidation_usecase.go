package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashflow/internal/domain"
)

// ErrConsolidationUnavailable signals that the downstream service is
// still down and the message should come back later.
var ErrConsolidationUnavailable = errors.New("consolidation service unavailable")

// ConsolidationUseCase finishes deferred consolidations: it applies a
// queued entry's delta to its day's aggregate, flips the entry to
// consolidated, and invalidates the read-side caches.
type ConsolidationUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	aggRepo   AggregateRepository
	cache     Cache
	probe     AvailabilityProbe
	retrier   Retrier
	logger    zerolog.Logger
}

// NewConsolidationUseCase creates a new ConsolidationUseCase.
func NewConsolidationUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	aggRepo AggregateRepository,
	cache Cache,
	probe AvailabilityProbe,
	retrier Retrier,
	logger zerolog.Logger,
) *ConsolidationUseCase {
	return &ConsolidationUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		aggRepo:   aggRepo,
		cache:     cache,
		probe:     probe,
		retrier:   retrier,
		logger:    logger,
	}
}

// Consolidate processes one queued entry. A nil return means the
// message can be acknowledged; any error means it must be requeued.
//
// Delivery is at-least-once, so the same entry can arrive more than
// once. Entries already consolidated are acknowledged without touching
// the aggregate; re-applying the delta would double-count.
func (uc *ConsolidationUseCase) Consolidate(ctx context.Context, queued *domain.Entry) error {
	date := domain.DateOf(queued.AggregateDate)

	if !uc.probe.Available(ctx) {
		return ErrConsolidationUnavailable
	}

	// The command handler creates the aggregate row before queueing,
	// so a missing row is abnormal; requeue and let it surface.
	if _, err := uc.aggRepo.GetByDate(ctx, date); err != nil {
		return err
	}

	var skipped bool

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		skipped, err = uc.apply(ctx, queued.ID, date)
		return err
	})
	if err != nil {
		return err
	}

	if skipped {
		uc.logger.Info().
			Int64("entry_id", queued.ID).
			Msg("entry already consolidated, skipping")
	} else {
		uc.logger.Info().
			Int64("entry_id", queued.ID).
			Str("date", date.Format(time.DateOnly)).
			Msg("entry consolidated")
	}

	// Invalidate even on the skip path: a previous attempt may have
	// consolidated the entry and failed before clearing the cache.
	if err := uc.cache.Delete(ctx, AggregateCacheKey(date)); err != nil {
		return err
	}

	return uc.cache.Delete(ctx, EntriesCacheKey(date))
}

func (uc *ConsolidationUseCase) apply(ctx context.Context, entryID int64, date time.Time) (skipped bool, err error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent deliveries of the same entry.
	entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return false, err
	}

	if entry.Status == domain.EntryStatusConsolidated {
		return true, tx.Commit(ctx)
	}

	credits, debits := deltaFor(entry)
	if err := uc.aggRepo.AddToTotals(ctx, tx, date, credits, debits); err != nil {
		return false, err
	}

	if err := uc.entryRepo.SetStatus(ctx, tx, entry.ID, domain.EntryStatusConsolidated); err != nil {
		return false, err
	}

	return false, tx.Commit(ctx)
}
