package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashflow/internal/domain"
)

// QueryUseCase serves cache-aside reads. It never writes to the store;
// correctness never depends on the cache being up, only on cached
// values being no older than the last invalidation.
type QueryUseCase struct {
	entryRepo EntryRepository
	aggRepo   AggregateRepository
	cache     Cache
	logger    zerolog.Logger
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(entryRepo EntryRepository, aggRepo AggregateRepository, cache Cache, logger zerolog.Logger) *QueryUseCase {
	return &QueryUseCase{
		entryRepo: entryRepo,
		aggRepo:   aggRepo,
		cache:     cache,
		logger:    logger,
	}
}

// GetAggregate returns the daily aggregate for a date, from cache when
// possible. A cache failure degrades to a store read.
func (uc *QueryUseCase) GetAggregate(ctx context.Context, date time.Time) (*domain.DailyAggregate, error) {
	date = domain.DateOf(date)
	key := AggregateCacheKey(date)

	if raw, err := uc.cache.Get(ctx, key); err == nil {
		var agg domain.DailyAggregate
		if err := json.Unmarshal(raw, &agg); err == nil {
			return &agg, nil
		}

		uc.logger.Warn().Str("key", key).Msg("dropping undecodable cache value")
	}

	agg, err := uc.aggRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	uc.populate(ctx, key, agg)

	return agg, nil
}

// GetEntries returns all entries for a date, from cache when possible.
func (uc *QueryUseCase) GetEntries(ctx context.Context, date time.Time) ([]*domain.Entry, error) {
	date = domain.DateOf(date)
	key := EntriesCacheKey(date)

	if raw, err := uc.cache.Get(ctx, key); err == nil {
		var entries []*domain.Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}

		uc.logger.Warn().Str("key", key).Msg("dropping undecodable cache value")
	}

	entries, err := uc.entryRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, domain.ErrEntriesNotFound
	}

	uc.populate(ctx, key, entries)

	return entries, nil
}

// populate writes through to the cache with the staleness-bounding
// TTL. Failures are logged, never surfaced; reads do not depend on the
// cache being writable.
func (uc *QueryUseCase) populate(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		uc.logger.Error().Err(err).Str("key", key).Msg("failed to encode cache value")
		return
	}

	if err := uc.cache.Set(ctx, key, raw, CacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("failed to populate cache")
	}
}
