package usecase

import (
	"time"
)

// CacheTTL bounds staleness when an invalidation is missed.
const CacheTTL = 30 * time.Minute

// AggregateCacheKey is the cache key for a date's aggregate snapshot.
func AggregateCacheKey(date time.Time) string {
	return "aggregate:" + date.Format(time.DateOnly)
}

// EntriesCacheKey is the cache key for a date's entry list.
func EntriesCacheKey(date time.Time) string {
	return "entries:" + date.Format(time.DateOnly)
}
