package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/iho/cashflow/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"aggregate not found", domain.ErrAggregateNotFound, http.StatusNotFound},
		{"entries not found", domain.ErrEntriesNotFound, http.StatusNotFound},
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"invalid kind", domain.ErrInvalidKind, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestParseDateParam(t *testing.T) {
	date, err := parseDateParam("2025-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, date)
	}

	if _, err := parseDateParam("15/06/2025"); err == nil {
		t.Fatalf("expected error for malformed date")
	}

	if _, err := parseDateParam(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}
