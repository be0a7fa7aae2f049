package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/timeout"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// HistoricalPriceSource returns the full daily close history for a symbol.
// An empty result means no data; an error means the transport failed.
type HistoricalPriceSource interface {
	GetFullHistory(ctx context.Context, symbol string) ([]model.PricePoint, error)
}

// DefaultHistoryMaxDays caps a history window at roughly ten years.
const DefaultHistoryMaxDays = 3660

// HistoryConfig tunes the price warm-up phase and bounds the window size.
type HistoryConfig struct {
	Concurrency int
	Timeout     time.Duration
	MaxDays     int
}

// HistoryService reconstructs daily portfolio values from a transaction log.
// Price series are fetched once per call and discarded afterwards.
type HistoryService struct {
	prices HistoricalPriceSource
	cfg    HistoryConfig
	log    zerolog.Logger
}

// NewHistoryService creates a HistoryService. Zero config values default to
// a concurrency of 4, a 10 second timeout per series and DefaultHistoryMaxDays.
func NewHistoryService(prices HistoricalPriceSource, cfg HistoryConfig, log zerolog.Logger) *HistoryService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = DefaultHistoryMaxDays
	}
	return &HistoryService{
		prices: prices,
		cfg:    cfg,
		log:    log.With().Str("component", "history").Logger(),
	}
}

// GetHistory validates its input, fetches the price series of every symbol the
// log ever holds, and replays the log over [start, end].
//
// A series that fails to load is treated as empty: that symbol contributes zero
// to invested value and the failure is logged. Validation errors are returned
// before any series is requested.
//
// Parameters:
//   - ctx: Context for cancellation of the warm-up fetches
//   - transactions: The portfolio's transaction log
//   - start, end: Inclusive window, at most MaxDays long
//   - initialCash: Flat cash value used when the log is empty
//
// Returns:
//   - []model.HistoryPoint: One point per calendar day
//   - error: Validation error only
func (s *HistoryService) GetHistory(
	ctx context.Context,
	transactions []model.Transaction,
	start, end time.Time,
	initialCash float64,
) ([]model.HistoryPoint, error) {
	if err := validation.ValidateWindow(model.Day(start), model.Day(end)); err != nil {
		return nil, err
	}
	if err := validation.ValidateWindowSpan(model.Day(start), model.Day(end), s.cfg.MaxDays); err != nil {
		return nil, err
	}
	if err := validation.ValidateTransactions(transactions); err != nil {
		return nil, err
	}

	series := s.warmUp(ctx, heldSymbols(transactions))

	return BuildHistory(transactions, series, start, end, initialCash)
}

// warmUp fetches the series for symbols with bounded concurrency. Failures are
// logged and leave the symbol without a series; they never cancel siblings.
func (s *HistoryService) warmUp(ctx context.Context, symbols []string) map[string]model.PriceSeries {
	var (
		mu     sync.Mutex
		series = make(map[string]model.PriceSeries, len(symbols))
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			points, err := timeout.Call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]model.PricePoint, error) {
				return s.prices.GetFullHistory(ctx, sym)
			})
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", sym).Msg("price history unavailable, symbol valued at zero")
				return nil
			}

			ps := model.NewPriceSeries(sym, points)
			mu.Lock()
			series[sym] = ps
			mu.Unlock()

			s.log.Debug().Str("symbol", sym).Int("points", len(ps.Points)).Msg("loaded price history")
			return nil
		})
	}
	_ = g.Wait()

	return series
}

// heldSymbols lists every symbol bought or sold in the log, in first-seen order.
func heldSymbols(transactions []model.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range transactions {
		if !tx.Type.MovesHoldings() {
			continue
		}
		sym := ticker.Normalize(tx.Symbol)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
