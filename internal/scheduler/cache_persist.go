package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
)

// QuoteStore persists quote cache snapshots.
type QuoteStore interface {
	SaveQuotes(ctx context.Context, quotes []model.Quote) error
	LoadQuotes() ([]model.Quote, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CachePersistJob writes the in-memory quote cache to the store and prunes
// entries older than the retention horizon from both.
type CachePersistJob struct {
	cache     *quote.Cache
	store     QuoteStore
	retention time.Duration
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
	running   sync.Mutex
}

// CachePersistConfig holds configuration for the cache persistence job
type CachePersistConfig struct {
	Cache     *quote.Cache
	Store     QuoteStore
	Retention time.Duration
	Timeout   time.Duration
	Log       zerolog.Logger
}

// NewCachePersistJob creates a new cache persistence job
func NewCachePersistJob(cfg CachePersistConfig) *CachePersistJob {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CachePersistJob{
		cache:     cfg.Cache,
		store:     cfg.Store,
		retention: cfg.Retention,
		timeout:   cfg.Timeout,
		log:       cfg.Log.With().Str("job", "quote_cache_persist").Logger(),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *CachePersistJob) Name() string {
	return "quote_cache_persist"
}

// Run prunes expired entries and saves the remaining snapshot. An overlapping
// run is skipped rather than queued.
func (j *CachePersistJob) Run() error {
	if !j.running.TryLock() {
		j.log.Warn().Msg("Cache persistence already running")
		return nil
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	pruned := 0
	var deleted int64
	if j.retention > 0 {
		pruned = j.cache.Prune(j.retention)
		var err error
		deleted, err = j.store.DeleteOlderThan(ctx, j.now().Add(-j.retention))
		if err != nil {
			return fmt.Errorf("prune persisted quotes: %w", err)
		}
	}

	snapshot := j.cache.Snapshot()
	if err := j.store.SaveQuotes(ctx, snapshot); err != nil {
		return fmt.Errorf("persist quote cache: %w", err)
	}

	j.log.Debug().
		Int("saved", len(snapshot)).
		Int("pruned_memory", pruned).
		Int64("pruned_stored", deleted).
		Msg("Quote cache persisted")
	return nil
}

// Restore seeds the cache from the store, skipping entries past retention.
// It returns the number of quotes loaded.
func (j *CachePersistJob) Restore() (int, error) {
	quotes, err := j.store.LoadQuotes()
	if err != nil {
		return 0, fmt.Errorf("load persisted quotes: %w", err)
	}

	if j.retention > 0 {
		cutoff := j.now().Add(-j.retention)
		kept := quotes[:0]
		for _, q := range quotes {
			if !q.FetchedAt.Before(cutoff) {
				kept = append(kept, q)
			}
		}
		quotes = kept
	}

	j.cache.Seed(quotes...)
	j.log.Info().Int("quotes", len(quotes)).Msg("Quote cache restored")
	return len(quotes), nil
}
