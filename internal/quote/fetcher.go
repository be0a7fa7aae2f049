// Package quote fetches current prices from a rate-limited provider in sequential
// batches and keeps the last known price per symbol in a shared Cache, falling
// back to it when the provider is unavailable.
package quote

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/timeout"
)

// Fetcher defaults.
const (
	DefaultBatchSize  = 25
	DefaultBatchDelay = 250 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
)

// Source is a batch quote provider. Any error means the provider was
// unavailable for the whole batch.
type Source interface {
	GetBatchQuotes(ctx context.Context, symbols []string) ([]model.ProviderQuote, error)
}

// Config controls batching and timeouts.
type Config struct {
	BatchSize  int
	BatchDelay time.Duration
	Timeout    time.Duration
}

// Fetcher retrieves quotes through a Source and maintains the Cache.
type Fetcher struct {
	source Source
	cache  *Cache
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher. Zero config values fall back to the package defaults.
func NewFetcher(source Source, cache *Cache, cfg Config, log zerolog.Logger) *Fetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Fetcher{
		source: source,
		cache:  cache,
		cfg:    cfg,
		log:    log.With().Str("component", "quote_fetcher").Logger(),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Cache returns the cache maintained by the fetcher.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

type fetchOptions struct {
	batchSize    int
	batchDelay   time.Duration
	forceRefresh bool
}

// FetchOption overrides fetcher behaviour for a single call.
type FetchOption func(*fetchOptions)

// WithBatchSize overrides the number of symbols per provider request.
func WithBatchSize(n int) FetchOption {
	return func(o *fetchOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay overrides the pause between sequential batches.
func WithBatchDelay(d time.Duration) FetchOption {
	return func(o *fetchOptions) {
		if d >= 0 {
			o.batchDelay = d
		}
	}
}

// WithForceRefresh bypasses fresh cache entries and asks the provider for every symbol.
func WithForceRefresh() FetchOption {
	return func(o *fetchOptions) {
		o.forceRefresh = true
	}
}

// FetchQuotes returns the best available quote for each requested symbol.
//
// Symbols are normalised and de-duplicated; an empty request returns an empty
// map without contacting the provider. Fresh cache entries are served directly
// unless WithForceRefresh is given. The remaining symbols are requested in
// sequential batches with the configured delay between them. When a batch
// fails, or the provider omits a symbol, the last cached quote is returned
// tagged stale. Symbols with neither a live nor a cached quote are absent from
// the result: absent means "price unknown", never zero.
func (f *Fetcher) FetchQuotes(ctx context.Context, symbols []string, opts ...FetchOption) map[string]model.Quote {
	o := fetchOptions{
		batchSize:  f.cfg.BatchSize,
		batchDelay: f.cfg.BatchDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}

	requested := uniqueSymbols(symbols)
	result := make(map[string]model.Quote, len(requested))
	if len(requested) == 0 {
		return result
	}

	pending := make([]string, 0, len(requested))
	for _, sym := range requested {
		if !o.forceRefresh {
			if q, ok := f.cache.GetFresh(sym); ok {
				q.Provenance = model.ProvenanceCache
				result[sym] = q
				continue
			}
		}
		pending = append(pending, sym)
	}

	batches := chunk(pending, o.batchSize)
	for i, batch := range batches {
		if i > 0 && o.batchDelay > 0 {
			if err := f.sleep(ctx, o.batchDelay); err != nil {
				f.log.Warn().Err(err).Int("remaining_batches", len(batches)-i).Msg("quote fetch interrupted, serving remaining symbols from cache")
				for _, rest := range batches[i:] {
					f.serveStale(rest, result)
				}
				return result
			}
		}
		f.fetchBatch(ctx, batch, result)
	}

	return result
}

// fetchBatch requests one batch and writes live or stale quotes into result.
func (f *Fetcher) fetchBatch(ctx context.Context, batch []string, result map[string]model.Quote) {
	raw, err := timeout.Call(ctx, f.cfg.Timeout, func(ctx context.Context) ([]model.ProviderQuote, error) {
		return f.source.GetBatchQuotes(ctx, batch)
	})
	if err != nil {
		served := f.serveStale(batch, result)
		f.log.Warn().
			Err(err).
			Int("batch_size", len(batch)).
			Int("served_from_cache", served).
			Msg("quote provider unavailable, using cached quotes")
		return
	}

	wanted := make(map[string]bool, len(batch))
	for _, sym := range batch {
		wanted[sym] = true
	}

	fetchedAt := f.now()
	for _, pq := range raw {
		sym := ticker.Normalize(pq.Symbol)
		if !wanted[sym] || !validPrice(pq.Price) {
			continue
		}
		q := model.Quote{
			Symbol:     sym,
			Price:      ticker.NormalizePrice(sym, pq.Price, pq.Currency),
			Volume:     pq.Volume,
			Currency:   normalizedCurrency(sym, pq.Currency),
			FetchedAt:  fetchedAt,
			Provenance: model.ProvenanceLive,
		}
		f.cache.Put(q)
		result[sym] = q
		delete(wanted, sym)
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for _, sym := range batch {
			if wanted[sym] {
				missing = append(missing, sym)
			}
		}
		served := f.serveStale(missing, result)
		f.log.Debug().
			Strs("symbols", missing).
			Int("served_from_cache", served).
			Msg("provider returned no quote for symbols")
	}

	f.log.Debug().Int("batch_size", len(batch)).Int("quotes", len(raw)).Msg("fetched quote batch")
}

// serveStale copies the last cached quote for each symbol into result, tagged stale.
func (f *Fetcher) serveStale(symbols []string, result map[string]model.Quote) int {
	served := 0
	for _, sym := range symbols {
		q, ok := f.cache.Get(sym)
		if !ok {
			continue
		}
		q.Provenance = model.ProvenanceStale
		result[sym] = q
		served++
	}
	return served
}

// uniqueSymbols normalises symbols and removes blanks and duplicates, keeping first-seen order.
func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := ticker.Normalize(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// chunk splits symbols into consecutive batches of at most size elements.
func chunk(symbols []string, size int) [][]string {
	if len(symbols) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		batches = append(batches, symbols[start:end])
	}
	return batches
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// normalizedCurrency reports the currency of the stored (pound-denominated) price.
func normalizedCurrency(symbol, currency string) string {
	if ticker.IsPenceDenominated(symbol, currency) {
		return "GBP"
	}
	return currency
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
