package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies an entry as money in or money out.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// Valid reports whether the kind is one of the known values.
func (k EntryKind) Valid() bool {
	return k == EntryKindCredit || k == EntryKindDebit
}

// EntryStatus tracks whether an entry has been folded into its day's
// aggregate. The only legal transition is Pending -> Consolidated.
type EntryStatus string

const (
	EntryStatusPending      EntryStatus = "pending"
	EntryStatusConsolidated EntryStatus = "consolidated"
)

// Entry is a single credit or debit line for a calendar date.
type Entry struct {
	ID            int64           `json:"id"`
	Kind          EntryKind       `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	EntryDate     time.Time       `json:"entry_date"`
	Description   string          `json:"description"`
	Status        EntryStatus     `json:"status"`
	AggregateDate time.Time       `json:"aggregate_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewEntry builds a pending entry for the given date. Time-of-day is
// dropped; entries are bucketed by calendar date only.
func NewEntry(kind EntryKind, amount decimal.Decimal, description string, entryDate time.Time) *Entry {
	date := DateOf(entryDate)

	return &Entry{
		Kind:          kind,
		Amount:        amount,
		EntryDate:     date,
		Description:   description,
		Status:        EntryStatusPending,
		AggregateDate: date,
		CreatedAt:     time.Now().UTC(),
	}
}

// Consolidate flips the entry to consolidated. Consolidated is
// terminal; flipping twice is an error.
func (e *Entry) Consolidate() error {
	if e.Status == EntryStatusConsolidated {
		return ErrAlreadyConsolidated
	}

	e.Status = EntryStatusConsolidated

	return nil
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
