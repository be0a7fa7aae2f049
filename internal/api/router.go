package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
)

// Dependencies bundles what the router wires into handlers.
type Dependencies struct {
	SystemService      *service.SystemService
	PortfolioService   *service.PortfolioService
	TransactionService *service.TransactionService
	QuoteFetcher       *quote.Fetcher
	QuoteStore         handlers.PersistedQuotes
	Log                zerolog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.NewLogger(deps.Log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.SystemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(deps.PortfolioService, deps.TransactionService, cfg.History.Days)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/holdings", portfolioHandler.CreateHolding)
				r.Post("/transactions", portfolioHandler.CreateTransaction)
				r.Get("/valuation", portfolioHandler.Valuation)
				r.Get("/history", portfolioHandler.History)
				r.Get("/exposure", portfolioHandler.Exposure)
			})
		})

		r.Route("/quotes", func(r chi.Router) {
			quoteHandler := handlers.NewQuoteHandler(deps.QuoteFetcher, deps.QuoteStore)
			r.Get("/", quoteHandler.Quotes)
			r.Delete("/cache", quoteHandler.ClearCache)
		})
	})

	return r
}
