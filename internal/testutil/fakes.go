package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// ErrFakeUnavailable is returned by fakes configured to fail.
var ErrFakeUnavailable = errors.New("fake provider unavailable")

// FakeQuoteSource answers batch quote requests from a fixed table.
type FakeQuoteSource struct {
	mu     sync.Mutex
	Prices map[string]model.ProviderQuote
	Fail   bool
	Calls  int
}

// NewFakeQuoteSource creates a FakeQuoteSource quoting each symbol at the given price.
func NewFakeQuoteSource(prices map[string]float64) *FakeQuoteSource {
	s := &FakeQuoteSource{Prices: make(map[string]model.ProviderQuote, len(prices))}
	for sym, p := range prices {
		s.Prices[sym] = model.ProviderQuote{Symbol: sym, Price: p, Currency: "USD"}
	}
	return s
}

// GetBatchQuotes implements quote.Source.
func (s *FakeQuoteSource) GetBatchQuotes(_ context.Context, symbols []string) ([]model.ProviderQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Fail {
		return nil, ErrFakeUnavailable
	}
	out := make([]model.ProviderQuote, 0, len(symbols))
	for _, sym := range symbols {
		if pq, ok := s.Prices[sym]; ok {
			out = append(out, pq)
		}
	}
	return out, nil
}

// SetFail toggles provider failure.
func (s *FakeQuoteSource) SetFail(fail bool) {
	s.mu.Lock()
	s.Fail = fail
	s.mu.Unlock()
}

// FakeHistorySource serves fixed price histories. Symbols listed in Fail
// return an error; Delay makes every call wait before answering.
type FakeHistorySource struct {
	mu       sync.Mutex
	Series   map[string][]model.PricePoint
	Fail     map[string]bool
	Delay    time.Duration
	Requests []string
}

// NewFakeHistorySource creates an empty FakeHistorySource.
func NewFakeHistorySource() *FakeHistorySource {
	return &FakeHistorySource{
		Series: make(map[string][]model.PricePoint),
		Fail:   make(map[string]bool),
	}
}

// WithPrices adds a daily close for symbol on each date in closes.
func (s *FakeHistorySource) WithPrices(symbol string, closes map[time.Time]float64) *FakeHistorySource {
	for d, c := range closes {
		s.Series[symbol] = append(s.Series[symbol], model.PricePoint{Date: d, Close: c})
	}
	return s
}

// GetFullHistory implements service.HistoricalPriceSource.
func (s *FakeHistorySource) GetFullHistory(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, symbol)
	fail := s.Fail[symbol]
	points := append([]model.PricePoint(nil), s.Series[symbol]...)
	delay := s.Delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if fail {
		return nil, ErrFakeUnavailable
	}
	return points, nil
}

// RequestCount returns how many series were requested.
func (s *FakeHistorySource) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// FakeFundSource serves fixed fund constituents. Funds listed in Fail return
// an error and funds listed in Hang block until the context is done.
type FakeFundSource struct {
	mu           sync.Mutex
	Constituents map[string][]model.Constituent
	Fail         map[string]bool
	Hang         map[string]bool
	Requests     []string
}

// NewFakeFundSource creates an empty FakeFundSource.
func NewFakeFundSource() *FakeFundSource {
	return &FakeFundSource{
		Constituents: make(map[string][]model.Constituent),
		Fail:         make(map[string]bool),
		Hang:         make(map[string]bool),
	}
}

// GetHoldings implements service.FundHoldingsSource.
func (s *FakeFundSource) GetHoldings(ctx context.Context, fundSymbol, _ string) ([]model.Constituent, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, fundSymbol)
	fail := s.Fail[fundSymbol]
	hang := s.Hang[fundSymbol]
	constituents := append([]model.Constituent(nil), s.Constituents[fundSymbol]...)
	s.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail {
		return nil, ErrFakeUnavailable
	}
	return constituents, nil
}

// RequestCount returns how many lookups were made.
func (s *FakeFundSource) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
