package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/timeout"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// FundHoldingsSource resolves a fund into its constituents. issuerHint may be
// empty. Any error means no look-through is available for that fund.
type FundHoldingsSource interface {
	GetHoldings(ctx context.Context, fundSymbol, issuerHint string) ([]model.Constituent, error)
}

// ExposureConfig tunes fund lookups.
type ExposureConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// ExposureService produces look-through exposure breakdowns.
type ExposureService struct {
	funds FundHoldingsSource
	cfg   ExposureConfig
	log   zerolog.Logger
}

// NewExposureService creates an ExposureService. Zero config values default
// to a concurrency of 4 and a 10 second timeout per lookup.
func NewExposureService(funds FundHoldingsSource, cfg ExposureConfig, log zerolog.Logger) *ExposureService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ExposureService{
		funds: funds,
		cfg:   cfg,
		log:   log.With().Str("component", "exposure").Logger(),
	}
}

// AggregateExposure returns the ranked look-through exposure of holdings.
//
// Holdings are valued with Holding.Value, so callers wanting live prices should
// set LivePrice first (see ValuationService.Value). Fund lookups run
// concurrently; a fund whose lookup fails, times out, or returns no
// constituents is left out of the breakdown and logged.
//
// Returns a validation error for malformed holdings; lookup failures never
// produce an error.
func (s *ExposureService) AggregateExposure(ctx context.Context, holdings []model.Holding) (model.ExposureBreakdown, error) {
	if err := validation.ValidateHoldings(holdings); err != nil {
		return model.ExposureBreakdown{}, err
	}

	agg := aggregateExposure(holdings, s.resolveFunds(ctx, holdings))
	for _, sk := range agg.skipped {
		s.log.Warn().
			Err(sk.err).
			Str("fund", sk.symbol).
			Str("reason", sk.reason).
			Msg("fund look-through skipped")
	}

	return agg.breakdown(), nil
}

// resolveFunds looks up every distinct fund in holdings with bounded
// concurrency. Each lookup gets its own timeout; a failure only affects that fund.
func (s *ExposureService) resolveFunds(ctx context.Context, holdings []model.Holding) map[string]lookThroughResult {
	if s.funds == nil {
		return nil
	}
	type request struct {
		symbol, hint string
	}
	requests := make(map[string]request)
	var keys []string
	for _, h := range holdings {
		if !h.IsFund() || h.Value() == 0 {
			continue
		}
		key := fundLookupKey(h)
		if _, ok := requests[key]; ok {
			continue
		}
		requests[key] = request{symbol: ticker.Normalize(h.Symbol), hint: h.IssuerHint}
		keys = append(keys, key)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]lookThroughResult, len(keys))
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, key := range keys {
		key := key
		req := requests[key]
		g.Go(func() error {
			constituents, err := timeout.Call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]model.Constituent, error) {
				return s.funds.GetHoldings(ctx, req.symbol, req.hint)
			})

			var res lookThroughResult
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				res = lookThroughResult{skipReason: skipLookupTimedOut, err: err}
			case err != nil:
				res = lookThroughResult{skipReason: skipLookupFailed, err: err}
			default:
				res = lookThroughOK(constituents)
			}

			mu.Lock()
			results[key] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
