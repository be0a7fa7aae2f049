package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio and holding tables.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// InsertPortfolio stores a new portfolio. A missing ID is generated and
// CreatedAt is set to the current time.
func (s *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portfolio (id, name, cash_balance, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.CashBalance, formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// GetPortfolioOnID retrieves a single portfolio.
// Returns apperrors.ErrPortfolioNotFound when no row matches.
func (s *PortfolioRepository) GetPortfolioOnID(portfolioID string) (model.Portfolio, error) {
	query := `
          SELECT id, name, cash_balance, created_at
          FROM portfolio
          WHERE id = ?
      `
	var p model.Portfolio
	var createdAtStr string

	err := s.db.QueryRow(query, portfolioID).Scan(
		&p.ID,
		&p.Name,
		&p.CashBalance,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// InsertHolding stores a holding for an existing portfolio. A missing ID is generated.
func (s *PortfolioRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holding (id, portfolio_id, symbol, name, category, quantity, manual_price,
		                     cost, account, section, sector, country, issuer_hint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.PortfolioID, h.Symbol, h.Name, string(h.Category), h.Quantity, h.ManualPrice,
		h.Cost, h.Account, h.Section, h.Sector, h.Country, h.IssuerHint,
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// GetHoldings retrieves all holdings of a portfolio ordered by symbol.
// Returns an empty slice if the portfolio has no holdings.
func (s *PortfolioRepository) GetHoldings(portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT id, portfolio_id, symbol, name, category, quantity, manual_price,
		       cost, account, section, sector, country, issuer_hint
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY symbol ASC, id ASC
	`
	rows, err := s.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		var category string
		err := rows.Scan(
			&h.ID,
			&h.PortfolioID,
			&h.Symbol,
			&h.Name,
			&category,
			&h.Quantity,
			&h.ManualPrice,
			&h.Cost,
			&h.Account,
			&h.Section,
			&h.Sector,
			&h.Country,
			&h.IssuerHint,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		h.Category = model.HoldingCategory(category)
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}
