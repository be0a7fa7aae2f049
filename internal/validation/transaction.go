package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// ValidateTransactions checks a transaction log before replay.
// Buy and sell must reference a symbol and a non-zero quantity.
func ValidateTransactions(transactions []model.Transaction) error {
	var c collector
	for i, tx := range transactions {
		prefix := fmt.Sprintf("transactions[%d].", i)
		validateTransaction(&c, prefix, tx.Type, tx.Symbol, tx.Quantity, tx.Date.IsZero())
	}
	return c.err()
}

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: deposit, withdraw, buy, sell, dividend
//   - symbol: Required for buy and sell
//   - quantity: Must be non-zero for buy and sell
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	var c collector

	if _, err := ParseDate(req.Date); err != nil {
		c.add("date", apperrors.ErrMissingDate, "date must be in YYYY-MM-DD format")
	}
	validateTransaction(&c, "", model.TransactionType(strings.ToLower(req.Type)), req.Symbol, req.Quantity, false)

	return c.err()
}

func validateTransaction(c *collector, prefix string, typ model.TransactionType, symbol string, quantity float64, missingDate bool) {
	if missingDate {
		c.add(prefix+"date", apperrors.ErrMissingDate, "")
	}
	if !typ.Valid() {
		c.add(prefix+"type", apperrors.ErrUnknownTransactionType, fmt.Sprintf("invalid type: %s", typ))
		return
	}
	if !typ.MovesHoldings() {
		return
	}
	if strings.TrimSpace(symbol) == "" {
		c.add(prefix+"symbol", apperrors.ErrMissingSymbol, "")
	}
	if quantity == 0 {
		c.add(prefix+"quantity", apperrors.ErrZeroQuantity, "")
	}
}
