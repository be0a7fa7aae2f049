package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// InsertTransaction appends a transaction to a portfolio's log. A missing ID is
// generated and CreatedAt is set to the current time.
func (s *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now().UTC()

	var symbol sql.NullString
	if t.Symbol != "" {
		symbol = sql.NullString{String: t.Symbol, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO "transaction" (id, portfolio_id, type, date, symbol, quantity, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PortfolioID, string(t.Type), t.Date.Format(dateLayout), symbol,
		t.Quantity, t.Amount, formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransactionsPerPortfolio retrieves the full transaction log of a portfolio.
// Transactions are ordered by date, then by insertion order.
// Returns an empty slice if the portfolio has no transactions.
func (s *TransactionRepository) GetTransactionsPerPortfolio(portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, type, date, symbol, quantity, amount, created_at
		FROM "transaction"
		WHERE portfolio_id = ?
		ORDER BY date ASC, seq ASC
	`
	rows, err := s.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var txType, dateStr, createdAtStr string
		var symbol sql.NullString

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&txType,
			&dateStr,
			&symbol,
			&t.Quantity,
			&t.Amount,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Type = model.TransactionType(txType)
		t.Symbol = symbol.String
		if t.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}
