// Package validation rejects malformed input synchronously, before any
// external call is made. Every failure matches apperrors.ErrValidation.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
)

// DateLayout is the calendar date format accepted on input.
const DateLayout = "2006-01-02"

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, apperrors.ErrInvalidUUID, id)
	}
	return nil
}

// ValidateWindow checks that a date window is ordered. Equal bounds are a
// valid one-day window.
func ValidateWindow(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: %w: end %s is before start %s",
			apperrors.ErrValidation, apperrors.ErrInvalidDateRange,
			end.Format(DateLayout), start.Format(DateLayout))
	}
	return nil
}

// ValidateWindowSpan checks that [start, end] covers at most maxDays calendar
// days. A non-positive maxDays disables the check.
func ValidateWindowSpan(start, end time.Time, maxDays int) error {
	if maxDays <= 0 {
		return nil
	}
	if days := (end.Unix()-start.Unix())/(24*60*60) + 1; days > int64(maxDays) {
		return fmt.Errorf("%w: %w: %d days requested, at most %d allowed",
			apperrors.ErrValidation, apperrors.ErrWindowTooLarge, days, maxDays)
	}
	return nil
}

// ValidateSymbols checks that at least one non-blank symbol is given.
func ValidateSymbols(symbols []string) error {
	for _, s := range symbols {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", apperrors.ErrValidation, apperrors.ErrEmptySymbols)
}

// ParseDate parses a YYYY-MM-DD date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, apperrors.ErrMissingDate)
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	return t, nil
}
