package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyAggregate is the per-date rollup of consolidated entries. One
// row per date, created lazily on the first entry of that day.
type DailyAggregate struct {
	Date         time.Time       `json:"date"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Balance is derived, never stored.
func (a *DailyAggregate) Balance() decimal.Decimal {
	return a.TotalCredits.Sub(a.TotalDebits)
}
