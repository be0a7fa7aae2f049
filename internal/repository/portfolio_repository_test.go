package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/testutil"
)

// TestPortfolioRepository tests portfolio and holding storage.
//
// WHY: Holdings feed both valuation and exposure; every column written must
// come back unchanged, and a missing portfolio must be a typed error.
func TestPortfolioRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPortfolioRepository(db)

	p := testutil.NewPortfolio().WithName("ISA").WithCashBalance(12.5).Build(t, db)

	t.Run("get portfolio", func(t *testing.T) {
		got, err := repo.GetPortfolioOnID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, "ISA", got.Name)
		assert.Equal(t, 12.5, got.CashBalance)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("missing portfolio", func(t *testing.T) {
		_, err := repo.GetPortfolioOnID(testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
	})

	t.Run("holdings round trip", func(t *testing.T) {
		want := testutil.NewHolding("VWRL.L").AsFund("LSE").WithQuantity(3.5).WithManualPrice(95).
			WithSector("Diversified").WithCountry("GB").Build(t, db, p.ID)
		testutil.NewHolding("AAPL").Build(t, db, p.ID)

		holdings, err := repo.GetHoldings(p.ID)
		require.NoError(t, err)
		require.Len(t, holdings, 2)
		assert.Equal(t, "AAPL", holdings[0].Symbol)

		got := holdings[1]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, model.CategoryFund, got.Category)
		assert.Equal(t, 3.5, got.Quantity)
		assert.Equal(t, 95.0, got.ManualPrice)
		assert.Equal(t, "LSE", got.IssuerHint)
		assert.Equal(t, "GB", got.Country)
		assert.Nil(t, got.LivePrice)
	})

	t.Run("holding for unknown portfolio fails", func(t *testing.T) {
		h := testutil.NewHolding("AAPL").Value()
		h.PortfolioID = testutil.MakeID()
		assert.Error(t, repo.InsertHolding(context.Background(), &h))
	})

	t.Run("no holdings is an empty slice", func(t *testing.T) {
		other := testutil.NewPortfolio().Build(t, db)
		holdings, err := repo.GetHoldings(other.ID)
		require.NoError(t, err)
		assert.NotNil(t, holdings)
		assert.Empty(t, holdings)
	})
}

// TestTransactionRepository tests the transaction log order.
//
// WHY: Same-day transactions replay in insertion order, so the log must come
// back ordered by date and then by the order rows were written.
func TestTransactionRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewPortfolio().Build(t, db)

	day := testutil.Date(2024, time.May, 2)
	sell := testutil.NewTransaction(model.TransactionSell, day).WithSymbol("AAPL").WithQuantity(1).WithAmount(50).Build(t, db, p.ID)
	buy := testutil.NewTransaction(model.TransactionBuy, day).WithSymbol("AAPL").WithQuantity(1).WithAmount(40).Build(t, db, p.ID)
	deposit := testutil.NewTransaction(model.TransactionDeposit, day.AddDate(0, 0, -1)).WithAmount(100).Build(t, db, p.ID)

	txs, err := repo.GetTransactionsPerPortfolio(p.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{deposit.ID, sell.ID, buy.ID}, []string{txs[0].ID, txs[1].ID, txs[2].ID})

	assert.Empty(t, txs[0].Symbol)
	assert.Equal(t, "AAPL", txs[1].Symbol)
	assert.Equal(t, day, txs[1].Date)
	assert.Equal(t, 50.0, txs[1].Amount)
}
