package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/eodhd"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/logging"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/scheduler"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/version"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// External providers
	yahooClient := yahoo.NewFinanceClient(cfg.Providers.YahooBaseURL, cfg.History.ExternalTimeout)

	var funds service.FundHoldingsSource
	if cfg.Providers.EODHDAPIKey != "" {
		funds = eodhd.NewClient(cfg.Providers.EODHDAPIKey,
			eodhd.WithBaseURL(cfg.Providers.EODHDBaseURL),
			eodhd.WithRateLimit(cfg.Providers.EODHDRateLimit),
			eodhd.WithTimeout(cfg.History.ExternalTimeout),
			eodhd.WithLogger(log),
		)
	} else {
		log.Warn().Msg("EODHD_API_KEY not set, fund look-through disabled")
	}

	// Quote cache and fetcher
	cache := quote.NewCache(cfg.Quotes.CacheTTL)
	fetcher := quote.NewFetcher(yahooClient, cache, quote.Config{
		BatchSize:  cfg.Quotes.BatchSize,
		BatchDelay: cfg.Quotes.BatchDelay,
		Timeout:    cfg.History.ExternalTimeout,
	}, log)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	// Create services
	systemService := service.NewSystemService(db, cache)
	transactionService := service.NewTransactionService(
		portfolioRepo,
		transactionRepo,
	)
	valuationService := service.NewValuationService(fetcher)
	historyService := service.NewHistoryService(yahooClient, service.HistoryConfig{
		Concurrency: cfg.History.FetchConcurrency,
		Timeout:     cfg.History.ExternalTimeout,
		MaxDays:     cfg.History.MaxDays,
	}, log)
	exposureService := service.NewExposureService(funds, service.ExposureConfig{
		Concurrency: cfg.History.FetchConcurrency,
		Timeout:     cfg.History.ExternalTimeout,
	}, log)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		transactionService,
		valuationService,
		historyService,
		exposureService,
	)

	// Background jobs
	persistJob := scheduler.NewCachePersistJob(scheduler.CachePersistConfig{
		Cache:     cache,
		Store:     quoteRepo,
		Retention: cfg.Quotes.CacheRetention,
		Log:       log,
	})
	if _, err := persistJob.Restore(); err != nil {
		log.Warn().Err(err).Msg("Could not restore quote cache, starting empty")
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Scheduler.CachePersistSchedule, persistJob); err != nil {
		return fmt.Errorf("invalid CACHE_PERSIST_SCHEDULE: %w", err)
	}
	sched.Start()

	// Create router
	router := api.NewRouter(api.Dependencies{
		SystemService:      systemService,
		PortfolioService:   portfolioService,
		TransactionService: transactionService,
		QuoteFetcher:       fetcher,
		QuoteStore:         quoteRepo,
		Log:                log,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	case err := <-serverErr:
		sched.Stop()
		return fmt.Errorf("server failed to start: %w", err)
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sched.Stop()
	if err := persistJob.Run(); err != nil {
		log.Warn().Err(err).Msg("Final quote cache persist failed")
	}

	log.Info().Msg("Server exited")
	return nil
}
