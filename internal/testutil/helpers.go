package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
)

// TestServices bundles the services built on one test database.
type TestServices struct {
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Valuation   *service.ValuationService
	History     *service.HistoryService
	Exposure    *service.ExposureService
	System      *service.SystemService
	Fetcher     *quote.Fetcher
}

// NewTestServices wires the full service graph against db and the given fakes.
// Quotes are fetched without batch delay; external calls time out after one second.
func NewTestServices(t *testing.T, db *sql.DB, quotes quote.Source, history service.HistoricalPriceSource, funds service.FundHoldingsSource) TestServices {
	t.Helper()

	log := zerolog.Nop()
	cache := quote.NewCache(time.Minute)
	fetcher := quote.NewFetcher(quotes, cache, quote.Config{BatchSize: 25, Timeout: time.Second}, log)

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	transactionService := service.NewTransactionService(portfolioRepo, transactionRepo)
	valuationService := service.NewValuationService(fetcher)
	historyService := service.NewHistoryService(history, service.HistoryConfig{Concurrency: 4, Timeout: time.Second}, log)
	exposureService := service.NewExposureService(funds, service.ExposureConfig{Concurrency: 4, Timeout: time.Second}, log)

	return TestServices{
		Portfolio: service.NewPortfolioService(
			portfolioRepo,
			transactionService,
			valuationService,
			historyService,
			exposureService,
		),
		Transaction: transactionService,
		Valuation:   valuationService,
		History:     historyService,
		Exposure:    exposureService,
		System:      service.NewSystemService(db, cache),
		Fetcher:     fetcher,
	}
}
