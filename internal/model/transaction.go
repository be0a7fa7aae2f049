package model

import "time"

// TransactionType identifies the kind of event recorded in a portfolio's transaction log.
type TransactionType string

// Supported transaction types.
const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionWithdraw TransactionType = "withdraw"
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
)

// MovesHoldings reports whether the transaction type changes held quantities.
// Deposit, withdraw, and dividend events only move cash.
func (t TransactionType) MovesHoldings() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdraw, TransactionBuy, TransactionSell, TransactionDividend:
		return true
	}
	return false
}

// Transaction is one event in a position's lifecycle.
//
// Quantity and Amount are stored as entered; the replay engine applies the
// direction implied by Type, so both positive and negative sign conventions
// produce the same result. Symbol is empty for cash-only events.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId,omitempty"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	Symbol      string          `json:"symbol,omitempty"`
	Quantity    float64         `json:"quantity"`
	Amount      float64         `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
