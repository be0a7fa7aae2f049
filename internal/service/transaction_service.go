package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// TransactionService handles recording and loading portfolio transaction logs.
type TransactionService struct {
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateTransaction validates and appends a transaction to a portfolio's log.
//
// The symbol is normalised to upper case; cash-only events drop any symbol.
//
// Returns apperrors.ErrPortfolioNotFound if the portfolio does not exist, or a
// validation error if the request is malformed.
func (s *TransactionService) CreateTransaction(ctx context.Context, portfolioID string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	if err := validation.ValidateCreateTransaction(req); err != nil {
		return nil, err
	}
	if _, err := s.portfolioRepo.GetPortfolioOnID(portfolioID); err != nil {
		return nil, err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		PortfolioID: portfolioID,
		Type:        model.TransactionType(strings.ToLower(req.Type)),
		Date:        date,
		Quantity:    req.Quantity,
		Amount:      req.Amount,
	}
	if tx.Type.MovesHoldings() {
		tx.Symbol = ticker.FormatExchangeTicker(req.Symbol, req.Exchange)
	}

	if err := s.transactionRepo.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return tx, nil
}

// GetTransactions returns a portfolio's full log ordered by date, then insertion order.
func (s *TransactionService) GetTransactions(portfolioID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactionsPerPortfolio(portfolioID)
}
