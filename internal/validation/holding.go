package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// ValidCategories contains the allowed holding category values.
var ValidCategories = map[model.HoldingCategory]bool{
	model.CategoryEquity: true,
	model.CategoryFund:   true,
	model.CategoryETF:    true,
}

// ValidateHoldings checks every holding passed to the valuation and exposure engines.
// Field keys are prefixed with the holding index, e.g. "holdings[2].quantity".
func ValidateHoldings(holdings []model.Holding) error {
	var c collector
	for i, h := range holdings {
		prefix := fmt.Sprintf("holdings[%d].", i)
		if strings.TrimSpace(h.Symbol) == "" {
			c.add(prefix+"symbol", apperrors.ErrMissingSymbol, "")
		}
		if h.Quantity < 0 || math.IsNaN(h.Quantity) {
			c.add(prefix+"quantity", apperrors.ErrNegativeQuantity, "")
		}
		if h.Category != "" && !ValidCategories[h.Category] {
			c.add(prefix+"category", apperrors.ErrUnknownCategory, fmt.Sprintf("invalid category: %s", h.Category))
		}
	}
	return c.err()
}

// ValidateCreateHolding validates a holding creation request.
//
// Required fields:
//   - symbol: Must not be blank
//   - quantity: Must be zero or positive
//   - category: Must be one of: equity, fund, etf (empty defaults to equity)
//   - manualPrice: Must not be negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	var c collector

	if strings.TrimSpace(req.Symbol) == "" {
		c.add("symbol", apperrors.ErrMissingSymbol, "")
	}
	if req.Quantity < 0 {
		c.add("quantity", apperrors.ErrNegativeQuantity, "")
	}
	if req.ManualPrice < 0 {
		c.add("manualPrice", apperrors.ErrValidation, "manualPrice cannot be negative")
	}
	if req.Category != "" && !ValidCategories[model.HoldingCategory(strings.ToLower(req.Category))] {
		c.add("category", apperrors.ErrUnknownCategory, fmt.Sprintf("invalid category: %s", req.Category))
	}

	return c.err()
}
