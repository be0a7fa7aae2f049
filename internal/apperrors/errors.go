package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")
)

// ErrValidation is wrapped by every input validation failure, so callers can
// distinguish malformed input from operational failures with errors.Is.
var ErrValidation = errors.New("validation failed")

// Validation errors represent malformed input rejected before any external call is made.
var (
	// ErrInvalidDateRange indicates that the window end is before its start.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrWindowTooLarge indicates a history window longer than the configured maximum.
	ErrWindowTooLarge = errors.New("date window too large")

	// ErrNegativeQuantity indicates a holding with a quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrZeroQuantity indicates a buy or sell without a quantity.
	ErrZeroQuantity = errors.New("quantity is required for buy and sell transactions")

	// ErrMissingSymbol indicates a buy, sell, or holding without a symbol.
	ErrMissingSymbol = errors.New("symbol is required")

	// ErrUnknownTransactionType indicates a transaction type outside the supported set.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrUnknownCategory indicates a holding category outside the supported set.
	ErrUnknownCategory = errors.New("unknown holding category")

	// ErrMissingDate indicates a transaction without a date.
	ErrMissingDate = errors.New("date is required")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptySymbols indicates a quote request without any symbol.
	ErrEmptySymbols = errors.New("at least one symbol is required")

	// ErrMissingName indicates a portfolio without a name.
	ErrMissingName = errors.New("name is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveHoldings     = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToBuildHistory         = errors.New("failed to build portfolio history")
	ErrFailedToAggregateExposure    = errors.New("failed to aggregate exposure")
	ErrFailedToValuePortfolio       = errors.New("failed to value portfolio")
)
