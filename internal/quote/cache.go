package quote

import (
	"sort"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
)

// DefaultTTL is the default staleness horizon for cached quotes.
const DefaultTTL = 5 * time.Minute

// Cache holds the last known quote per symbol. It is safe for concurrent use
// and is shared by every request in the process.
//
// Entries never move backwards in time: Put ignores a quote older than the one
// already stored, so a slow or cancelled fetch cannot overwrite a newer price.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]model.Quote
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an empty cache with the given staleness horizon.
// A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]model.Quote),
		ttl:     ttl,
		now:     time.Now,
	}
}

// TTL returns the staleness horizon.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the most recent quote for symbol regardless of age.
func (c *Cache) Get(symbol string) (model.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.entries[ticker.Normalize(symbol)]
	return q, ok
}

// GetFresh returns the quote for symbol only if it was fetched within the TTL.
func (c *Cache) GetFresh(symbol string) (model.Quote, bool) {
	q, ok := c.Get(symbol)
	if !ok || c.now().Sub(q.FetchedAt) > c.ttl {
		return model.Quote{}, false
	}
	return q, true
}

// Put stores q unless a newer quote for the same symbol is already cached.
// It reports whether the entry was written.
func (c *Cache) Put(q model.Quote) bool {
	key := ticker.Normalize(q.Symbol)
	if key == "" {
		return false
	}
	q.Symbol = key

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok && existing.FetchedAt.After(q.FetchedAt) {
		return false
	}
	c.entries[key] = q
	return true
}

// Seed stores every quote in quotes, following the same ordering rule as Put.
func (c *Cache) Seed(quotes ...model.Quote) {
	for _, q := range quotes {
		c.Put(q)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.Quote)
}

// Prune removes entries fetched more than maxAge ago and returns how many were removed.
func (c *Cache) Prune(maxAge time.Duration) int {
	cutoff := c.now().Add(-maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, q := range c.entries {
		if q.FetchedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Snapshot returns a copy of every cached quote ordered by symbol.
func (c *Cache) Snapshot() []model.Quote {
	c.mu.RLock()
	quotes := make([]model.Quote, 0, len(c.entries))
	for _, q := range c.entries {
		quotes = append(quotes, q)
	}
	c.mu.RUnlock()

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Symbol < quotes[j].Symbol
	})
	return quotes
}

// Len returns the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
