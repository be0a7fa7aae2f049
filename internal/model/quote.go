package model

import "time"

// QuoteProvenance tags where a Quote came from.
type QuoteProvenance string

// Quote provenance values.
const (
	// ProvenanceLive marks a quote returned by the provider in this request.
	ProvenanceLive QuoteProvenance = "live"
	// ProvenanceCache marks a cached quote still inside the staleness horizon.
	ProvenanceCache QuoteProvenance = "cache"
	// ProvenanceStale marks a cached quote served because the live fetch failed.
	ProvenanceStale QuoteProvenance = "stale"
)

// Quote is a current price snapshot for one symbol. Price is always pound
// denominated for UK instruments.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Price      float64         `json:"price"`
	Volume     int64           `json:"volume"`
	Currency   string          `json:"currency,omitempty"`
	FetchedAt  time.Time       `json:"fetchedAt"`
	Provenance QuoteProvenance `json:"provenance"`
}

// Stale reports whether the quote was served as a degraded fallback.
func (q Quote) Stale() bool {
	return q.Provenance == ProvenanceStale
}

// ProviderQuote is a raw batch-quote row as returned by a quote provider,
// before currency normalisation.
type ProviderQuote struct {
	Symbol   string
	Price    float64
	Volume   int64
	Currency string
}
