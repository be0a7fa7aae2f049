package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// QuoteRepository persists the last known quote per symbol so the in-memory
// cache survives restarts.
type QuoteRepository struct {
	db *sql.DB
}

// NewQuoteRepository creates a new QuoteRepository with the provided database connection.
func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// SaveQuotes upserts quotes in a single transaction. An existing row is only
// replaced by a quote fetched at or after the stored one.
func (r *QuoteRepository) SaveQuotes(ctx context.Context, quotes []model.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quote_cache (symbol, price, volume, currency, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			volume = excluded.volume,
			currency = excluded.currency,
			fetched_at = excluded.fetched_at
		WHERE excluded.fetched_at >= quote_cache.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare quote upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx, q.Symbol, q.Price, q.Volume, q.Currency, formatTimestamp(q.FetchedAt)); err != nil {
			return fmt.Errorf("failed to save quote %s: %w", q.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quotes: %w", err)
	}
	return nil
}

// LoadQuotes returns every persisted quote ordered by symbol. Provenance is
// left empty; the cache assigns it when serving.
func (r *QuoteRepository) LoadQuotes() ([]model.Quote, error) {
	rows, err := r.db.Query(`SELECT symbol, price, volume, currency, fetched_at FROM quote_cache ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote_cache table: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		var q model.Quote
		var fetchedAtStr string
		if err := rows.Scan(&q.Symbol, &q.Price, &q.Volume, &q.Currency, &fetchedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan quote_cache table results: %w", err)
		}
		if q.FetchedAt, err = ParseTime(fetchedAtStr); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote_cache table: %w", err)
	}
	return quotes, nil
}

// DeleteOlderThan removes quotes fetched before cutoff and returns how many were removed.
func (r *QuoteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quote_cache WHERE fetched_at < ?`, formatTimestamp(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune quote_cache: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll empties the persisted cache.
func (r *QuoteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quote_cache`); err != nil {
		return fmt.Errorf("failed to clear quote_cache: %w", err)
	}
	return nil
}
