package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
)

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID          int64           `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	EntryDate   string          `json:"entry_date"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		Kind:        string(e.Kind),
		Amount:      e.Amount,
		EntryDate:   e.EntryDate.Format(time.DateOnly),
		Description: e.Description,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// AggregateResponse represents a daily aggregate in API responses.
type AggregateResponse struct {
	Date         string          `json:"date"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	Balance      decimal.Decimal `json:"balance"`
}

// AggregateFromDomain converts a domain aggregate to a response.
func AggregateFromDomain(a *domain.DailyAggregate) *AggregateResponse {
	return &AggregateResponse{
		Date:         a.Date.Format(time.DateOnly),
		TotalCredits: a.TotalCredits,
		TotalDebits:  a.TotalDebits,
		Balance:      a.Balance(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
