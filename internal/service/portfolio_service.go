package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// PortfolioService handles portfolio-related business logic operations.
// It loads stored holdings and transactions and hands them to the valuation,
// history, and exposure engines.
type PortfolioService struct {
	portfolioRepo      *repository.PortfolioRepository
	transactionService *TransactionService
	valuationService   *ValuationService
	historyService     *HistoryService
	exposureService    *ExposureService
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	transactionService *TransactionService,
	valuationService *ValuationService,
	historyService *HistoryService,
	exposureService *ExposureService,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:      portfolioRepo,
		transactionService: transactionService,
		valuationService:   valuationService,
		historyService:     historyService,
		exposureService:    exposureService,
	}
}

// CreatePortfolio validates and stores a new portfolio.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (*model.Portfolio, error) {
	if err := validation.ValidateCreatePortfolio(req); err != nil {
		return nil, err
	}

	p := &model.Portfolio{
		Name:        strings.TrimSpace(req.Name),
		CashBalance: req.CashBalance,
	}
	if err := s.portfolioRepo.InsertPortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return p, nil
}

// GetPortfolio retrieves a portfolio by ID.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(portfolioID)
}

// AddHolding validates and stores a holding.
//
// A bare symbol with an exchange is rewritten to the provider's suffixed form
// (e.g., "VUSA" on "LSE" becomes "VUSA.L"). An empty category defaults to equity.
//
// Returns apperrors.ErrPortfolioNotFound if the portfolio does not exist.
func (s *PortfolioService) AddHolding(ctx context.Context, portfolioID string, req request.CreateHoldingRequest) (*model.Holding, error) {
	if err := validation.ValidateCreateHolding(req); err != nil {
		return nil, err
	}
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}

	category := model.HoldingCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if category == "" {
		category = model.CategoryEquity
	}

	h := &model.Holding{
		PortfolioID: portfolioID,
		Symbol:      ticker.FormatExchangeTicker(ticker.Normalize(req.Symbol), req.Exchange),
		Name:        strings.TrimSpace(req.Name),
		Category:    category,
		Quantity:    req.Quantity,
		ManualPrice: req.ManualPrice,
		Cost:        req.Cost,
		Account:     req.Account,
		Section:     req.Section,
		Sector:      req.Sector,
		Country:     req.Country,
		IssuerHint:  req.IssuerHint,
	}
	if h.IssuerHint == "" {
		h.IssuerHint = req.Exchange
	}

	if err := s.portfolioRepo.InsertHolding(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to add holding: %w", err)
	}
	return h, nil
}

// GetValuation values every holding of a portfolio at current quotes.
func (s *PortfolioService) GetValuation(ctx context.Context, portfolioID string) (model.Valuation, error) {
	holdings, err := s.loadHoldings(portfolioID)
	if err != nil {
		return model.Valuation{}, err
	}

	v, err := s.valuationService.Value(ctx, holdings)
	if err != nil {
		return model.Valuation{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToValuePortfolio, err)
	}
	return v, nil
}

// GetHistory replays a portfolio's transactions over [start, end]. The
// portfolio's cash balance is the flat value when no transactions exist.
func (s *PortfolioService) GetHistory(ctx context.Context, portfolioID string, start, end time.Time) ([]model.HistoryPoint, error) {
	p, err := s.portfolioRepo.GetPortfolioOnID(portfolioID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionService.GetTransactions(portfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}

	return s.historyService.GetHistory(ctx, transactions, start, end, p.CashBalance)
}

// GetExposure values a portfolio at current quotes and aggregates its
// look-through exposure.
func (s *PortfolioService) GetExposure(ctx context.Context, portfolioID string) (model.ExposureBreakdown, error) {
	holdings, err := s.loadHoldings(portfolioID)
	if err != nil {
		return model.ExposureBreakdown{}, err
	}

	v, err := s.valuationService.Value(ctx, holdings)
	if err != nil {
		return model.ExposureBreakdown{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAggregateExposure, err)
	}

	return s.exposureService.AggregateExposure(ctx, PricedHoldings(v))
}

func (s *PortfolioService) loadHoldings(portfolioID string) ([]model.Holding, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}
	holdings, err := s.portfolioRepo.GetHoldings(portfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHoldings, err)
	}
	return holdings, nil
}
