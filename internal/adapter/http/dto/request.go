package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashflow/internal/domain"
	"github.com/iho/cashflow/internal/usecase"
)

const maxDescriptionLength = 255

var (
	errMissingDate        = errors.New("entry_date is required")
	errAmountPrecision    = errors.New("amount must have at most two decimal places")
	errDescriptionTooLong = errors.New("description must be at most 255 characters")
)

// RegisterEntryRequest represents a request to register an entry.
type RegisterEntryRequest struct {
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
}

// ToUseCaseInput validates the request and converts it to use case
// input. The core assumes a well-formed entry; this is the boundary
// that makes it so.
func (r *RegisterEntryRequest) ToUseCaseInput() (usecase.RegisterInput, error) {
	kind := domain.EntryKind(r.Kind)
	if !kind.Valid() {
		return usecase.RegisterInput{}, domain.ErrInvalidKind
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return usecase.RegisterInput{}, domain.ErrInvalidAmount
	}

	if r.Amount.Exponent() < -2 {
		return usecase.RegisterInput{}, errAmountPrecision
	}

	if len(r.Description) > maxDescriptionLength {
		return usecase.RegisterInput{}, errDescriptionTooLong
	}

	if r.EntryDate.IsZero() {
		return usecase.RegisterInput{}, errMissingDate
	}

	return usecase.RegisterInput{
		Kind:        kind,
		Amount:      r.Amount,
		Description: r.Description,
		EntryDate:   r.EntryDate,
	}, nil
}
