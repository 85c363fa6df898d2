package domain

import "errors"

var (
	// Entry errors
	ErrEntryNotFound       = errors.New("entry not found")
	ErrEntriesNotFound     = errors.New("no entries for date")
	ErrInvalidKind         = errors.New("kind must be credit or debit")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAlreadyConsolidated = errors.New("entry already consolidated")

	// Aggregate errors
	ErrAggregateNotFound = errors.New("daily aggregate not found")
)
