package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
)

// MakeID returns a new random UUID string.
func MakeID() string {
	return uuid.New().String()
}

// Date returns midnight UTC of the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PortfolioBuilder provides a fluent interface for creating portfolios
type PortfolioBuilder struct {
	ID          string
	Name        string
	CashBalance float64
}

// NewPortfolio creates a PortfolioBuilder with defaults
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:   MakeID(),
		Name: "Test Portfolio",
	}
}

// WithName sets the portfolio name
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithCashBalance sets the uninvested cash
func (b *PortfolioBuilder) WithCashBalance(cash float64) *PortfolioBuilder {
	b.CashBalance = cash
	return b
}

// Build creates the portfolio in the database
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := model.Portfolio{ID: b.ID, Name: b.Name, CashBalance: b.CashBalance}
	if err := repository.NewPortfolioRepository(db).InsertPortfolio(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create portfolio: %v", err)
	}
	return p
}

// HoldingBuilder provides a fluent interface for creating holdings
type HoldingBuilder struct {
	holding model.Holding
}

// NewHolding creates a HoldingBuilder for a direct equity holding of 10 units
// at a manual price of 100.
func NewHolding(symbol string) *HoldingBuilder {
	return &HoldingBuilder{holding: model.Holding{
		ID:          MakeID(),
		Symbol:      symbol,
		Name:        symbol,
		Category:    model.CategoryEquity,
		Quantity:    10,
		ManualPrice: 100,
	}}
}

// WithCategory sets the holding category
func (b *HoldingBuilder) WithCategory(category model.HoldingCategory) *HoldingBuilder {
	b.holding.Category = category
	return b
}

// AsFund marks the holding as a fund with the given issuer hint
func (b *HoldingBuilder) AsFund(issuerHint string) *HoldingBuilder {
	b.holding.Category = model.CategoryFund
	b.holding.IssuerHint = issuerHint
	return b
}

// WithQuantity sets the quantity held
func (b *HoldingBuilder) WithQuantity(qty float64) *HoldingBuilder {
	b.holding.Quantity = qty
	return b
}

// WithManualPrice sets the manual price
func (b *HoldingBuilder) WithManualPrice(price float64) *HoldingBuilder {
	b.holding.ManualPrice = price
	return b
}

// WithLivePrice sets the live price
func (b *HoldingBuilder) WithLivePrice(price float64) *HoldingBuilder {
	b.holding.LivePrice = &price
	return b
}

// WithSector sets the sector
func (b *HoldingBuilder) WithSector(sector string) *HoldingBuilder {
	b.holding.Sector = sector
	return b
}

// WithCountry sets the country
func (b *HoldingBuilder) WithCountry(country string) *HoldingBuilder {
	b.holding.Country = country
	return b
}

// Value returns the holding without storing it.
func (b *HoldingBuilder) Value() model.Holding {
	return b.holding
}

// Build creates the holding in the database
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB, portfolioID string) model.Holding {
	t.Helper()

	h := b.holding
	h.PortfolioID = portfolioID
	if err := repository.NewPortfolioRepository(db).InsertHolding(context.Background(), &h); err != nil {
		t.Fatalf("Failed to create holding: %v", err)
	}
	return h
}

// TransactionBuilder provides a fluent interface for creating transactions
type TransactionBuilder struct {
	tx model.Transaction
}

// NewTransaction creates a TransactionBuilder. Amount and quantity are
// entered as positive values; direction comes from the type.
func NewTransaction(txType model.TransactionType, date time.Time) *TransactionBuilder {
	return &TransactionBuilder{tx: model.Transaction{
		ID:   MakeID(),
		Type: txType,
		Date: date,
	}}
}

// Deposit returns a cash deposit of amount on date.
func Deposit(date time.Time, amount float64) model.Transaction {
	return NewTransaction(model.TransactionDeposit, date).WithAmount(amount).Value()
}

// Withdraw returns a cash withdrawal of amount on date.
func Withdraw(date time.Time, amount float64) model.Transaction {
	return NewTransaction(model.TransactionWithdraw, date).WithAmount(amount).Value()
}

// Buy returns a purchase of qty units of symbol for amount on date.
func Buy(date time.Time, symbol string, qty, amount float64) model.Transaction {
	return NewTransaction(model.TransactionBuy, date).WithSymbol(symbol).WithQuantity(qty).WithAmount(amount).Value()
}

// Sell returns a sale of qty units of symbol for amount on date.
func Sell(date time.Time, symbol string, qty, amount float64) model.Transaction {
	return NewTransaction(model.TransactionSell, date).WithSymbol(symbol).WithQuantity(qty).WithAmount(amount).Value()
}

// WithSymbol sets the symbol
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.tx.Symbol = symbol
	return b
}

// WithQuantity sets the quantity
func (b *TransactionBuilder) WithQuantity(qty float64) *TransactionBuilder {
	b.tx.Quantity = qty
	return b
}

// WithAmount sets the cash amount
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.tx.Amount = amount
	return b
}

// Value returns the transaction without storing it.
func (b *TransactionBuilder) Value() model.Transaction {
	return b.tx
}

// Build creates the transaction in the database
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB, portfolioID string) model.Transaction {
	t.Helper()

	tx := b.tx
	tx.PortfolioID = portfolioID
	if err := repository.NewTransactionRepository(db).InsertTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return tx
}
