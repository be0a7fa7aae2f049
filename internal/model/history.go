package model

import "time"

// HistoryPoint is one day's reconstructed portfolio state.
// Total is always Cash + Invested.
type HistoryPoint struct {
	Date     time.Time `json:"date"`
	Cash     float64   `json:"cash"`
	Invested float64   `json:"invested"`
	Total    float64   `json:"total"`
}
