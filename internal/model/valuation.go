package model

// HoldingValuation is one holding priced for the current valuation.
type HoldingValuation struct {
	Holding    Holding         `json:"holding"`
	Price      float64         `json:"price"`
	Value      float64         `json:"value"`
	Provenance QuoteProvenance `json:"provenance,omitempty"`
}

// Valuation is the current value of a set of holdings. StaleSymbols were
// priced from a fallback quote; MissingSymbols had no quote and were valued
// at their manual price.
type Valuation struct {
	Holdings       []HoldingValuation `json:"holdings"`
	TotalValue     float64            `json:"totalValue"`
	StaleSymbols   []string           `json:"staleSymbols"`
	MissingSymbols []string           `json:"missingSymbols"`
}
