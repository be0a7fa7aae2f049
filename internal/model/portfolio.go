package model

import "time"

// Portfolio is the owner of a set of holdings and a transaction log.
// CashBalance is the current uninvested cash, used as the flat history
// value when no transactions have been recorded.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CashBalance float64   `json:"cashBalance"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
