package service

import (
	"context"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// QuoteFetcher is the part of quote.Fetcher the valuation needs.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, symbols []string, opts ...quote.FetchOption) map[string]model.Quote
}

// ValuationService prices holdings at current quotes.
type ValuationService struct {
	quotes QuoteFetcher
}

// NewValuationService creates a ValuationService backed by a quote fetcher.
func NewValuationService(quotes QuoteFetcher) *ValuationService {
	return &ValuationService{quotes: quotes}
}

// Value fetches a quote for every holding symbol and values each position.
//
// Holdings with a quote get LivePrice set, and stale quotes are listed in
// StaleSymbols. Holdings without any quote keep their manual price and are
// listed in MissingSymbols; a missing quote is never treated as zero.
// The input slice is not modified.
func (s *ValuationService) Value(ctx context.Context, holdings []model.Holding, opts ...quote.FetchOption) (model.Valuation, error) {
	if err := validation.ValidateHoldings(holdings); err != nil {
		return model.Valuation{}, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes := s.quotes.FetchQuotes(ctx, symbols, opts...)

	v := model.Valuation{
		Holdings:       make([]model.HoldingValuation, 0, len(holdings)),
		StaleSymbols:   []string{},
		MissingSymbols: []string{},
	}
	stale := make(map[string]bool)
	missing := make(map[string]bool)

	for _, h := range holdings {
		sym := ticker.Normalize(h.Symbol)
		hv := model.HoldingValuation{Holding: h}

		if q, ok := quotes[sym]; ok {
			price := q.Price
			hv.Holding.LivePrice = &price
			hv.Provenance = q.Provenance
			if q.Stale() && !stale[sym] {
				stale[sym] = true
				v.StaleSymbols = append(v.StaleSymbols, sym)
			}
		} else {
			hv.Holding.LivePrice = nil
			if !missing[sym] {
				missing[sym] = true
				v.MissingSymbols = append(v.MissingSymbols, sym)
			}
		}

		hv.Price = hv.Holding.Price()
		hv.Value = hv.Holding.Value()
		v.TotalValue += hv.Value
		v.Holdings = append(v.Holdings, hv)
	}

	return v, nil
}

// PricedHoldings returns the holdings from a valuation with live prices applied.
func PricedHoldings(v model.Valuation) []model.Holding {
	out := make([]model.Holding, len(v.Holdings))
	for i, hv := range v.Holdings {
		out[i] = hv.Holding
	}
	return out
}
